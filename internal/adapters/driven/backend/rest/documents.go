package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

// UploadDocument streams a file as multipart form data. The file goes in
// the "file" part; the department, when set, goes in a "metadata" JSON
// field. Progress is the share of req.Size written to the connection and
// never goes backwards, even when the body is resent after a token
// refresh. Resending needs req.Reader to be an io.Seeker.
func (c *Client) UploadDocument(
	ctx context.Context,
	req domain.UploadRequest,
	onProgress domain.UploadProgressFunc,
) (*domain.Document, error) {
	if req.Reader == nil || req.Name == "" {
		return nil, fmt.Errorf("upload document: %w", domain.ErrInvalidInput)
	}

	var meta string
	if req.Department != "" {
		b, err := json.Marshal(map[string]string{"department": req.Department})
		if err != nil {
			return nil, fmt.Errorf("marshal metadata: %w", err)
		}
		meta = string(b)
	}

	progress := &uploadProgress{total: req.Size, fn: onProgress}
	target := c.baseURL + apiPrefix + "/documents/upload"

	var prev *uploadBody
	defer func() {
		if prev != nil {
			prev.stop()
		}
	}()

	build := func(ctx context.Context) (*http.Request, error) {
		if prev != nil {
			prev.stop()
			seeker, ok := req.Reader.(io.Seeker)
			if !ok {
				return nil, fmt.Errorf("resend upload: %w", errUploadNotReplayable)
			}
			if _, err := seeker.Seek(0, io.SeekStart); err != nil {
				return nil, fmt.Errorf("rewind file: %w", err)
			}
		}
		body := startUploadBody(req, meta, progress)
		prev = body

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, target, body.r)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		httpReq.Header.Set("Content-Type", body.contentType)
		httpReq.Header.Set("Accept", "application/json")
		return httpReq, nil
	}

	resp, err := c.do(ctx, c.httpClient, build, true)
	if err != nil {
		return nil, fmt.Errorf("upload document: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("upload document: %w", decodeError(resp))
	}

	var doc domain.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if doc.Status == "" {
		doc.Status = domain.StatusUploaded
	}
	return &doc, nil
}

var errUploadNotReplayable = errors.New("file reader cannot be rewound")

// uploadBody is one attempt's multipart stream, written by a goroutine
// into a pipe the transport reads from.
type uploadBody struct {
	r           *io.PipeReader
	contentType string
	done        chan struct{}
}

func startUploadBody(req domain.UploadRequest, meta string, progress *uploadProgress) *uploadBody {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	b := &uploadBody{
		r:           pr,
		contentType: mw.FormDataContentType(),
		done:        make(chan struct{}),
	}
	go func() {
		defer close(b.done)
		pw.CloseWithError(writeMultipart(mw, req, meta, progress))
	}()
	return b
}

// stop ends the attempt and waits for its writer to let go of the file.
func (b *uploadBody) stop() {
	b.r.CloseWithError(io.ErrClosedPipe)
	<-b.done
}

func writeMultipart(mw *multipart.Writer, req domain.UploadRequest, meta string, progress *uploadProgress) error {
	part, err := mw.CreateFormFile("file", filepath.Base(req.Name))
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	progress.restart()
	if _, err := io.Copy(&progressWriter{w: part, p: progress}, req.Reader); err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	if meta != "" {
		if err := mw.WriteField("metadata", meta); err != nil {
			return fmt.Errorf("write metadata: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("close multipart: %w", err)
	}
	progress.report(100)
	return nil
}

// uploadProgress turns bytes written into a percentage of total. Only
// increases are reported, so a resent body does not restart the bar.
type uploadProgress struct {
	total int64
	fn    domain.UploadProgressFunc

	mu   sync.Mutex
	sent int64
	last int
}

func (p *uploadProgress) restart() {
	p.mu.Lock()
	p.sent = 0
	p.mu.Unlock()
}

func (p *uploadProgress) add(n int) {
	p.mu.Lock()
	p.sent += int64(n)
	sent := p.sent
	p.mu.Unlock()
	if p.total <= 0 {
		return
	}
	// 100 is reserved for the end of the body.
	p.report(int(min(sent*100/p.total, 99)))
}

func (p *uploadProgress) report(pct int) {
	if p.fn == nil {
		return
	}
	p.mu.Lock()
	if pct <= p.last {
		p.mu.Unlock()
		return
	}
	p.last = pct
	p.mu.Unlock()
	p.fn(pct)
}

type progressWriter struct {
	w io.Writer
	p *uploadProgress
}

func (w *progressWriter) Write(b []byte) (int, error) {
	n, err := w.w.Write(b)
	w.p.add(n)
	return n, err
}

// ListDocuments returns documents, optionally filtered by store and status.
func (c *Client) ListDocuments(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	q := url.Values{}
	if !filter.StoreID.IsZero() {
		q.Set("store_id", filter.StoreID.String())
	}
	if filter.Status != "" {
		q.Set("status", filter.Status.String())
	}
	var out []domain.Document
	if err := c.get(ctx, "/documents/", q, &out); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return out, nil
}

// GetDocument returns one document.
func (c *Client) GetDocument(ctx context.Context, id domain.ID) (*domain.Document, error) {
	var out domain.Document
	if err := c.get(ctx, "/documents/"+escape(id), nil, &out); err != nil {
		return nil, fmt.Errorf("get document %s: %w", id, err)
	}
	return &out, nil
}

// DeleteDocument removes a document.
func (c *Client) DeleteDocument(ctx context.Context, id domain.ID) error {
	if err := c.doJSON(ctx, http.MethodDelete, "/documents/"+escape(id), nil, nil, nil, true); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return nil
}

// MoveDocument assigns a document to another store.
func (c *Client) MoveDocument(ctx context.Context, id, storeID domain.ID) (*domain.Document, error) {
	body := map[string]domain.ID{"store_id": storeID}
	var out domain.Document
	path := "/documents/" + escape(id) + "/move-store"
	if err := c.doJSON(ctx, http.MethodPatch, path, nil, body, &out, true); err != nil {
		return nil, fmt.Errorf("move document %s: %w", id, err)
	}
	return &out, nil
}
