package pdf

import "testing"

func TestIsPDF(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"pdf header", []byte("%PDF-1.7\n..."), true},
		{"png header", []byte("\x89PNG\r\n\x1a\n"), false},
		{"empty", nil, false},
		{"truncated header", []byte("%PD"), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsPDF(tc.data); got != tc.want {
				t.Errorf("IsPDF() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPageCountMalformed(t *testing.T) {
	if _, err := PageCount([]byte("%PDF-1.4 garbage")); err == nil {
		t.Fatal("expected error for malformed PDF")
	}
}

func TestNewRasterizerDefaultDPI(t *testing.T) {
	if r := NewRasterizer(0); r.dpi != DefaultDPI {
		t.Errorf("dpi = %d, want %d", r.dpi, DefaultDPI)
	}
	if r := NewRasterizer(300); r.dpi != 300 {
		t.Errorf("dpi = %d, want 300", r.dpi)
	}
}
