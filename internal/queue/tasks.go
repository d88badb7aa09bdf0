/**
 * Task definitions shared by the producer (HTTP server) and consumer
 * (worker).
 */

package queue

// TaskProcessDocument is the asynq task type for document processing.
const TaskProcessDocument = "document:process"

// QueueDocuments is the asynq queue name for document tasks.
const QueueDocuments = "documents"

// ProcessDocumentPayload is the task payload. FileData rides along as JSON
// base64; documents are bounded by the configured upload size limit.
type ProcessDocumentPayload struct {
	DocumentID string `json:"documentId"`
	Filename   string `json:"filename"`
	MimeType   string `json:"mimeType,omitempty"`
	FileData   []byte `json:"fileData"`
}
