/**
 * OCR service - HTTP server entry point.
 *
 * Serves the synchronous OCR and invoice extraction API, and enqueues
 * documents for the asynchronous worker.
 */

package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/docuflow/ocr-service/internal/config"
	"github.com/docuflow/ocr-service/internal/extract"
	"github.com/docuflow/ocr-service/internal/ocr"
	"github.com/docuflow/ocr-service/internal/pdf"
	"github.com/docuflow/ocr-service/internal/processor"
	"github.com/docuflow/ocr-service/internal/queue"
	"github.com/docuflow/ocr-service/internal/server"
	"github.com/docuflow/ocr-service/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("OCR service starting: port=%s, engine=%s, lang=%s",
		cfg.Port, cfg.OCREngine, cfg.OCRLanguage)

	storageManager, err := storage.NewManager(cfg.DatabaseURL, cfg.QdrantURL, cfg.QdrantCollection)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer storageManager.Close()

	ocrService, err := buildOCRService(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize OCR engine: %v", err)
	}

	rasterizer := pdf.NewRasterizer(cfg.PDFRenderDPI)

	proc, err := processor.NewDocumentProcessor(&processor.Config{
		OCRService:     ocrService,
		StorageManager: storageManager,
		Rasterizer:     rasterizer,
		VoyageAPIKey:   cfg.VoyageAPIKey,
		MaxFileSize:    cfg.MaxFileSize,
	})
	if err != nil {
		log.Fatalf("Failed to initialize processor: %v", err)
	}

	producer, err := queue.NewProducer(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to initialize queue producer: %v", err)
	}
	defer producer.Close()

	llmClient, err := extract.NewLLMClient(&extract.LLMConfig{
		Provider:          cfg.LLMProvider,
		OpenAIAPIKey:      cfg.OpenAIAPIKey,
		OpenAIModel:       cfg.OpenAIModel,
		OpenAIVisionModel: cfg.OpenAIVisionModel,
		OpenAIChatModel:   cfg.OpenAIChatModel,
		GeminiAPIKey:      cfg.GeminiAPIKey,
		GeminiModel:       cfg.GeminiModel,
	})
	if err != nil {
		log.Fatalf("Failed to initialize LLM client: %v", err)
	}
	log.Printf("LLM extraction provider: %s", llmClient.Provider())

	srv := server.New(cfg, storageManager, proc, producer, llmClient, rasterizer)
	if err := srv.Run(); err != nil {
		log.Fatalf("HTTP server failed: %v", err)
	}
}

func buildOCRService(cfg *config.Config) (*ocr.Service, error) {
	var engine ocr.Engine
	var err error
	switch cfg.OCREngine {
	case "remote":
		engine, err = ocr.NewRemoteEngine(&ocr.RemoteConfig{BaseURL: cfg.RemoteOCRURL})
	default:
		engine, err = ocr.NewTesseractEngine(&ocr.TesseractConfig{Language: cfg.OCRLanguage})
	}
	if err != nil {
		return nil, err
	}
	return ocr.NewService(engine), nil
}
