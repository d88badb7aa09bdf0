/**
 * PostgreSQL client for document persistence.
 *
 * Stores document records, per-page reconstructed text, and invoice
 * extraction results. The schema is created on startup so the service runs
 * against a bare database.
 */

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Document statuses.
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// PostgresClient handles database operations.
type PostgresClient struct {
	db *sql.DB
}

// Document is one stored document record.
type Document struct {
	ID           string    `json:"documentId"`
	Filename     string    `json:"filename"`
	MimeType     string    `json:"mimeType"`
	Engine       string    `json:"engine,omitempty"`
	Status       string    `json:"status"`
	PageCount    int       `json:"pageCount"`
	ErrorCode    string    `json:"errorCode,omitempty"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Page is the reconstructed text of one document page.
type Page struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

// DocumentUpdate carries a status transition for a document.
type DocumentUpdate struct {
	DocumentID   string
	Status       string
	Engine       string
	PageCount    int
	ErrorCode    string
	ErrorMessage string
}

// NewPostgresClient connects to PostgreSQL and prepares the schema.
func NewPostgresClient(databaseURL string) (*PostgresClient, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	client := &PostgresClient{db: db}
	if err := client.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare schema: %w", err)
	}
	return client, nil
}

func (p *PostgresClient) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id            TEXT PRIMARY KEY,
			filename      TEXT NOT NULL,
			mime_type     TEXT NOT NULL,
			engine        TEXT NOT NULL DEFAULT '',
			status        TEXT NOT NULL DEFAULT 'queued',
			page_count    INTEGER NOT NULL DEFAULT 0,
			error_code    TEXT NOT NULL DEFAULT '',
			error_message TEXT NOT NULL DEFAULT '',
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS document_pages (
			document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			page_number INTEGER NOT NULL,
			text        TEXT NOT NULL,
			PRIMARY KEY (document_id, page_number)
		)`,
		`CREATE TABLE IF NOT EXISTS invoice_extractions (
			id          BIGSERIAL PRIMARY KEY,
			document_id TEXT NOT NULL,
			method      TEXT NOT NULL,
			payload     JSONB NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_invoice_extractions_document
			ON invoice_extractions (document_id)`,
	}
	for _, stmt := range statements {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// CreateDocument inserts a new document record.
func (p *PostgresClient) CreateDocument(ctx context.Context, doc *Document) error {
	if doc.ID == "" {
		return fmt.Errorf("document ID is required")
	}
	if doc.Status == "" {
		doc.Status = StatusQueued
	}

	_, err := p.db.ExecContext(ctx, `
		INSERT INTO documents (id, filename, mime_type, status)
		VALUES ($1, $2, $3, $4)`,
		doc.ID, doc.Filename, doc.MimeType, doc.Status)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// UpdateDocument applies a status transition. Empty update fields keep the
// stored value.
func (p *PostgresClient) UpdateDocument(ctx context.Context, update *DocumentUpdate) error {
	if update.DocumentID == "" {
		return fmt.Errorf("document ID is required")
	}
	if update.Status == "" {
		return fmt.Errorf("status is required")
	}

	_, err := p.db.ExecContext(ctx, `
		UPDATE documents SET
			status        = $2,
			engine        = CASE WHEN $3 <> '' THEN $3 ELSE engine END,
			page_count    = CASE WHEN $4 > 0 THEN $4 ELSE page_count END,
			error_code    = $5,
			error_message = $6,
			updated_at    = NOW()
		WHERE id = $1`,
		update.DocumentID, update.Status, update.Engine, update.PageCount,
		update.ErrorCode, update.ErrorMessage)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	return nil
}

// SavePages replaces the stored page texts of a document.
func (p *PostgresClient) SavePages(ctx context.Context, documentID string, pages []Page) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM document_pages WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("failed to clear pages: %w", err)
	}
	for _, page := range pages {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO document_pages (document_id, page_number, text)
			VALUES ($1, $2, $3)`,
			documentID, page.Page, page.Text); err != nil {
			return fmt.Errorf("failed to insert page %d: %w", page.Page, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit pages: %w", err)
	}
	return nil
}

// GetDocument fetches a document record. Returns sql.ErrNoRows when absent.
func (p *PostgresClient) GetDocument(ctx context.Context, documentID string) (*Document, error) {
	doc := &Document{}
	err := p.db.QueryRowContext(ctx, `
		SELECT id, filename, mime_type, engine, status, page_count,
		       error_code, error_message, created_at, updated_at
		FROM documents WHERE id = $1`, documentID).Scan(
		&doc.ID, &doc.Filename, &doc.MimeType, &doc.Engine, &doc.Status,
		&doc.PageCount, &doc.ErrorCode, &doc.ErrorMessage,
		&doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// GetPages returns the stored page texts of a document in page order.
func (p *PostgresClient) GetPages(ctx context.Context, documentID string) ([]Page, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT page_number, text FROM document_pages
		WHERE document_id = $1 ORDER BY page_number`, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer rows.Close()

	var pages []Page
	for rows.Next() {
		var page Page
		if err := rows.Scan(&page.Page, &page.Text); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		pages = append(pages, page)
	}
	return pages, rows.Err()
}

// SaveExtraction stores an invoice extraction result. Method distinguishes
// rule-based from LLM extraction.
func (p *PostgresClient) SaveExtraction(ctx context.Context, documentID, method string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal extraction payload: %w", err)
	}
	if _, err := p.db.ExecContext(ctx, `
		INSERT INTO invoice_extractions (document_id, method, payload)
		VALUES ($1, $2, $3)`, documentID, method, data); err != nil {
		return fmt.Errorf("failed to insert extraction: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (p *PostgresClient) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close closes the database connection pool.
func (p *PostgresClient) Close() error {
	return p.db.Close()
}
