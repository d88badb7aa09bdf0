/**
 * OCR service - queue worker entry point.
 *
 * Consumes document processing tasks from Redis, runs the OCR and layout
 * pipeline, persists results, and publishes lifecycle events.
 */

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/docuflow/ocr-service/internal/config"
	"github.com/docuflow/ocr-service/internal/ocr"
	"github.com/docuflow/ocr-service/internal/pdf"
	"github.com/docuflow/ocr-service/internal/processor"
	"github.com/docuflow/ocr-service/internal/queue"
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

	log.Printf("OCR worker starting: engine=%s, concurrency=%d",
		cfg.OCREngine, cfg.WorkerConcurrency)

	storageManager, err := storage.NewManager(cfg.DatabaseURL, cfg.QdrantURL, cfg.QdrantCollection)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer storageManager.Close()

	ocrService, err := buildOCRService(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize OCR engine: %v", err)
	}

	proc, err := processor.NewDocumentProcessor(&processor.Config{
		OCRService:     ocrService,
		StorageManager: storageManager,
		Rasterizer:     pdf.NewRasterizer(cfg.PDFRenderDPI),
		VoyageAPIKey:   cfg.VoyageAPIKey,
		MaxFileSize:    cfg.MaxFileSize,
	})
	if err != nil {
		log.Fatalf("Failed to initialize processor: %v", err)
	}

	events, err := queue.NewEventPublisher(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to initialize event publisher: %v", err)
	}
	defer events.Close()

	consumer, err := queue.NewConsumer(&queue.ConsumerConfig{
		RedisURL:          cfg.RedisURL,
		Concurrency:       cfg.WorkerConcurrency,
		Processor:         proc,
		Events:            events,
		ProcessingTimeout: time.Duration(cfg.ProcessingTimeout) * time.Millisecond,
	})
	if err != nil {
		log.Fatalf("Failed to initialize queue consumer: %v", err)
	}

	ctx := context.Background()
	if err := consumer.Start(ctx); err != nil {
		log.Fatalf("Failed to start queue consumer: %v", err)
	}
	log.Printf("Worker ready, waiting for documents...")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-sigChan
	log.Printf("Received signal %v, initiating graceful shutdown...", sig)

	if err := consumer.Stop(ctx); err != nil {
		log.Printf("Error stopping queue consumer: %v", err)
	}
	log.Printf("Shutdown complete")
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
