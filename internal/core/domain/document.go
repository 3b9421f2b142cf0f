package domain

import (
	"io"
	"os"
	"path/filepath"
	"time"
)

// DocumentStatus is the processing stage of an uploaded document.
type DocumentStatus string

// Processing stages in pipeline order.
const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusExtracting DocumentStatus = "extracting"
	StatusChunking   DocumentStatus = "chunking"
	StatusEmbedding  DocumentStatus = "embedding"
	StatusIndexing   DocumentStatus = "indexing"
	StatusCompleted  DocumentStatus = "completed"
	StatusError      DocumentStatus = "error"
)

// statusProgress is the fallback progress for each stage when the
// backend does not report a percentage.
var statusProgress = map[DocumentStatus]int{
	StatusUploaded:   10,
	StatusExtracting: 30,
	StatusChunking:   50,
	StatusEmbedding:  70,
	StatusIndexing:   90,
	StatusCompleted:  100,
	StatusError:      0,
}

// IsTerminal returns true once the document will not change status again.
func (s DocumentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusError
}

// IsValid returns true if the status is recognised.
func (s DocumentStatus) IsValid() bool {
	_, ok := statusProgress[s]
	return ok
}

// Progress returns the fixed progress value for the stage.
// Unknown stages report 0.
func (s DocumentStatus) Progress() int {
	return statusProgress[s]
}

// String returns the string representation.
func (s DocumentStatus) String() string {
	return string(s)
}

// Document is an uploaded file tracked by the backend.
type Document struct {
	ID              ID             `json:"id"`
	Name            string         `json:"name"`
	Type            string         `json:"type,omitempty"`
	Size            int64          `json:"size"`
	Status          DocumentStatus `json:"status"`
	ProgressPercent *int           `json:"progress_percent,omitempty"`
	StatusMessage   string         `json:"status_message,omitempty"`
	Department      string         `json:"department,omitempty"`
	RagStoreID      ID             `json:"rag_store_id,omitempty"`
	CreatedAt       time.Time      `json:"created_at,omitempty"`
	UpdatedAt       time.Time      `json:"updated_at,omitempty"`
}

// Progress derives a 0-100 value for display. The backend's
// progress_percent wins when present; otherwise the stage table is used.
func (d *Document) Progress() int {
	if d.ProgressPercent != nil {
		p := *d.ProgressPercent
		switch {
		case p < 0:
			return 0
		case p > 100:
			return 100
		}
		return p
	}
	return d.Status.Progress()
}

// InFlight returns true while the backend is still processing the document.
func (d *Document) InFlight() bool {
	return !d.Status.IsTerminal()
}

// DocumentFilter narrows a document listing.
type DocumentFilter struct {
	StoreID ID
	Status  DocumentStatus
}

// UploadRequest describes a file to upload.
type UploadRequest struct {
	// Name is the file name sent in the multipart part.
	Name string
	// Reader supplies the file bytes. An io.Seeker can be resent.
	Reader io.Reader
	// Size is the file length in bytes; zero when unknown.
	Size int64
	// Department is optional metadata.
	Department string
}

// NewFileUpload describes an open file, taking its size from Stat.
func NewFileUpload(f *os.File, department string) UploadRequest {
	req := UploadRequest{
		Name:       filepath.Base(f.Name()),
		Reader:     f,
		Department: department,
	}
	if info, err := f.Stat(); err == nil {
		req.Size = info.Size()
	}
	return req
}

// UploadProgressFunc receives the percentage of the request body sent.
type UploadProgressFunc func(percent int)

// ProcessingProgressFunc receives one update per status poll.
type ProcessingProgressFunc func(progress int, status DocumentStatus, message string)
