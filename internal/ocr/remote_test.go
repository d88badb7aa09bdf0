package ocr

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/docuflow/ocr-service/internal/layout"
)

func TestRemoteEngineRecognizePagePairList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req remoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req.Image == "" {
			t.Error("missing image payload")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result": [
			[[[0,0],[20,0],[20,10],[0,10]], ["hello", 0.97]],
			[[[0,20],[20,20],[20,30],[0,30]], ["world", 0.92]]
		]}`))
	}))
	defer srv.Close()

	engine, err := NewRemoteEngine(&RemoteConfig{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewRemoteEngine: %v", err)
	}

	segments, err := engine.RecognizePage(context.Background(), []byte("fake-png"))
	if err != nil {
		t.Fatalf("RecognizePage: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[0].Text != "hello" || segments[0].Confidence != 0.97 {
		t.Errorf("segment 0 = %+v", segments[0])
	}
	if _, ok := segments[1].Bounds(); !ok {
		t.Error("segment 1 should have valid geometry")
	}
}

func TestRemoteEngineRecognizePageParallelArrays(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result": {
			"dt_polys": [[[0,0],[10,0],[10,8],[0,8]], [[0,12],[10,12],[10,20],[0,20]], [[0,24],[10,24],[10,32],[0,32]]],
			"rec_texts": ["a", "b"],
			"rec_scores": [0.9, 0.8]
		}}`))
	}))
	defer srv.Close()

	engine, err := NewRemoteEngine(&RemoteConfig{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewRemoteEngine: %v", err)
	}

	segments, err := engine.RecognizePage(context.Background(), []byte("fake-png"))
	if err != nil {
		t.Fatalf("RecognizePage: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments (third poly unpaired), got %d", len(segments))
	}
}

func TestRemoteEngineServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	engine, _ := NewRemoteEngine(&RemoteConfig{BaseURL: srv.URL, Timeout: 2 * time.Second})
	if _, err := engine.RecognizePage(context.Background(), []byte("x")); err == nil {
		t.Fatal("expected error on 503")
	}
}

func TestRemoteEngineRequiresBaseURL(t *testing.T) {
	if _, err := NewRemoteEngine(&RemoteConfig{}); err == nil {
		t.Fatal("expected error for empty base URL")
	}
}

type stubEngine struct {
	segments []layout.Segment
	err      error
}

func (s *stubEngine) Name() string { return "stub" }

func (s *stubEngine) RecognizePage(ctx context.Context, image []byte) ([]layout.Segment, error) {
	return s.segments, s.err
}

func TestServiceExtractPageText(t *testing.T) {
	poly := func(minX, minY, maxX, maxY float64) []layout.Point {
		return []layout.Point{{X: minX, Y: minY}, {X: maxX, Y: minY}, {X: maxX, Y: maxY}, {X: minX, Y: maxY}}
	}
	svc := NewService(&stubEngine{segments: []layout.Segment{
		{Polygon: poly(40, 0, 60, 10), Text: "No. 7"},
		{Polygon: poly(0, 0, 30, 10), Text: "Invoice"},
		{Polygon: poly(0, 40, 30, 50), Text: "Total"},
	}})

	text, err := svc.ExtractPageText(context.Background(), 1, []byte("img"))
	if err != nil {
		t.Fatalf("ExtractPageText: %v", err)
	}
	want := "Invoice No. 7\nTotal"
	if text != want {
		t.Errorf("text = %q, want %q", text, want)
	}
}
