package domain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestDocumentStatus_Progress(t *testing.T) {
	tests := []struct {
		status DocumentStatus
		want   int
	}{
		{StatusUploaded, 10},
		{StatusExtracting, 30},
		{StatusChunking, 50},
		{StatusEmbedding, 70},
		{StatusIndexing, 90},
		{StatusCompleted, 100},
		{StatusError, 0},
		{DocumentStatus("queued"), 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.Progress())
		})
	}
}

func TestDocumentStatus_IsTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusError.IsTerminal())
	assert.False(t, StatusUploaded.IsTerminal())
	assert.False(t, StatusIndexing.IsTerminal())
	assert.False(t, DocumentStatus("queued").IsTerminal())
}

func TestDocumentStatus_IsValid(t *testing.T) {
	assert.True(t, StatusChunking.IsValid())
	assert.False(t, DocumentStatus("").IsValid())
	assert.False(t, DocumentStatus("done").IsValid())
}

func TestDocument_Progress_PrefersPercent(t *testing.T) {
	doc := Document{Status: StatusEmbedding, ProgressPercent: intPtr(64)}
	assert.Equal(t, 64, doc.Progress())
}

func TestDocument_Progress_FallsBackToStatus(t *testing.T) {
	doc := Document{Status: StatusEmbedding}
	assert.Equal(t, 70, doc.Progress())
}

func TestDocument_Progress_Clamped(t *testing.T) {
	assert.Equal(t, 100, (&Document{ProgressPercent: intPtr(140)}).Progress())
	assert.Equal(t, 0, (&Document{ProgressPercent: intPtr(-3)}).Progress())
}

func TestDocument_InFlight(t *testing.T) {
	assert.True(t, (&Document{Status: StatusUploaded}).InFlight())
	assert.False(t, (&Document{Status: StatusCompleted}).InFlight())
	assert.False(t, (&Document{Status: StatusError}).InFlight())
}

func TestNewFileUpload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "syllabus.md")
	require.NoError(t, os.WriteFile(path, []byte("# Week 1"), 0o600))
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	req := NewFileUpload(f, "math")
	assert.Equal(t, "syllabus.md", req.Name)
	assert.Equal(t, int64(8), req.Size)
	assert.Equal(t, "math", req.Department)
	assert.Same(t, f, req.Reader)
}
