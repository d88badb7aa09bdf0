package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("Port = %q, want 8000", cfg.Port)
	}
	if cfg.OCREngine != "tesseract" {
		t.Errorf("OCREngine = %q, want tesseract", cfg.OCREngine)
	}
	if cfg.PDFRenderDPI != 200 {
		t.Errorf("PDFRenderDPI = %d, want 200", cfg.PDFRenderDPI)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9001")
	t.Setenv("OCR_LANG", "bul")
	t.Setenv("WORKER_CONCURRENCY", "8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9001" || cfg.OCRLanguage != "bul" || cfg.WorkerConcurrency != 8 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"remote engine without URL", func(c *Config) { c.OCREngine = "remote" }, true},
		{"remote engine with URL", func(c *Config) {
			c.OCREngine = "remote"
			c.RemoteOCRURL = "http://paddle:8868"
		}, false},
		{"unknown engine", func(c *Config) { c.OCREngine = "magic" }, true},
		{"dpi too low", func(c *Config) { c.PDFRenderDPI = 50 }, true},
		{"concurrency too high", func(c *Config) { c.WorkerConcurrency = 500 }, true},
		{"missing redis", func(c *Config) { c.RedisURL = "" }, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			tc.mutate(cfg)
			err = cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestLoadInvalidIntFallsBack(t *testing.T) {
	t.Setenv("PDF_RENDER_DPI", "not-a-number")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PDFRenderDPI != 200 {
		t.Errorf("PDFRenderDPI = %d, want default 200", cfg.PDFRenderDPI)
	}
}
