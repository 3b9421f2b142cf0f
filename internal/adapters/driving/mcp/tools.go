package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

// ListStoresInput is the input schema for the list_stores tool.
type ListStoresInput struct{}

// ListStoresOutput is the output schema for the list_stores tool.
type ListStoresOutput struct {
	Stores []StoreOutput `json:"stores"`
	Count  int           `json:"count"`
}

// StoreOutput represents a single store.
type StoreOutput struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	DisplayName   string `json:"display_name,omitempty"`
	Description   string `json:"description,omitempty"`
	DocumentCount int    `json:"document_count"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Store    string `json:"store" jsonschema:"id, name or display name of the store to ask"`
	Question string `json:"question" jsonschema:"the question to answer from the store's documents"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string         `json:"answer"`
	Sources []SourceOutput `json:"sources,omitempty"`
}

// SourceOutput is a passage an answer was drawn from.
type SourceOutput struct {
	Title string `json:"title,omitempty"`
	URI   string `json:"uri,omitempty"`
	Text  string `json:"text,omitempty"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct {
	Store  string `json:"store,omitempty" jsonschema:"only documents of this store (id or name)"`
	Status string `json:"status,omitempty" jsonschema:"only documents with this status, e.g. completed or error"`
}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput represents a single document and its processing state.
type DocumentOutput struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	Message  string `json:"message,omitempty"`
	StoreID  string `json:"store_id,omitempty"`
	InFlight bool   `json:"in_flight"`
}

// DocumentStatusInput is the input schema for the document_status tool.
type DocumentStatusInput struct {
	DocumentID string `json:"document_id" jsonschema:"the document to report on"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_stores",
		Description: "List the document stores the signed-in user can chat with",
	}, s.handleListStores)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Ask a question answered from the documents of a store, with the passages used as sources",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List uploaded documents with their processing status",
	}, s.handleListDocuments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "document_status",
		Description: "Report the processing status of one document",
	}, s.handleDocumentStatus)
}

// handleListStores handles the list_stores tool invocation.
func (s *Server) handleListStores(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListStoresInput,
) (*mcp.CallToolResult, ListStoresOutput, error) {
	stores, err := s.ports.Stores.List(ctx)
	if err != nil {
		return nil, ListStoresOutput{}, fmt.Errorf("listing stores: %w", err)
	}

	output := ListStoresOutput{
		Stores: make([]StoreOutput, len(stores)),
		Count:  len(stores),
	}
	for i := range stores {
		output.Stores[i] = storeOutput(&stores[i])
	}
	return nil, output, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if s.ports.Chat == nil {
		return nil, AskOutput{}, fmt.Errorf("ask: %w", ErrToolUnavailable)
	}
	if strings.TrimSpace(input.Store) == "" || strings.TrimSpace(input.Question) == "" {
		return nil, AskOutput{}, fmt.Errorf("%w: store and question are required", domain.ErrInvalidInput)
	}

	store, err := s.ports.Stores.Find(ctx, input.Store)
	if err != nil {
		return nil, AskOutput{}, err
	}
	answer, err := s.ports.Chat.Ask(ctx, store, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{Answer: answer.Text()}
	for _, g := range answer.GroundingChunks {
		if g.RetrievedContext == nil {
			continue
		}
		output.Sources = append(output.Sources, SourceOutput{
			Title: g.RetrievedContext.Title,
			URI:   g.RetrievedContext.URI,
			Text:  g.RetrievedContext.Text,
		})
	}
	return nil, output, nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	if s.ports.Documents == nil {
		return nil, ListDocumentsOutput{}, fmt.Errorf("list_documents: %w", ErrToolUnavailable)
	}

	filter := domain.DocumentFilter{Status: domain.DocumentStatus(input.Status)}
	if input.Store != "" {
		store, err := s.ports.Stores.Find(ctx, input.Store)
		if err != nil {
			return nil, ListDocumentsOutput{}, err
		}
		filter.StoreID = store.ID
	}

	docs, err := s.ports.Documents.List(ctx, filter)
	if err != nil {
		return nil, ListDocumentsOutput{}, fmt.Errorf("listing documents: %w", err)
	}

	output := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		output.Documents[i] = documentOutput(&docs[i])
	}
	return nil, output, nil
}

// handleDocumentStatus handles the document_status tool invocation.
func (s *Server) handleDocumentStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentStatusInput,
) (*mcp.CallToolResult, DocumentOutput, error) {
	if s.ports.Documents == nil {
		return nil, DocumentOutput{}, fmt.Errorf("document_status: %w", ErrToolUnavailable)
	}
	if input.DocumentID == "" {
		return nil, DocumentOutput{}, fmt.Errorf("%w: document_id is required", domain.ErrInvalidInput)
	}

	doc, err := s.ports.Documents.Get(ctx, domain.ID(input.DocumentID))
	if err != nil {
		return nil, DocumentOutput{}, fmt.Errorf("getting document: %w", err)
	}
	return nil, documentOutput(doc), nil
}

func storeOutput(st *domain.RagStore) StoreOutput {
	return StoreOutput{
		ID:            st.ID.String(),
		Name:          st.Name,
		DisplayName:   st.DisplayName,
		Description:   st.Description,
		DocumentCount: st.DocumentCount,
	}
}

func documentOutput(d *domain.Document) DocumentOutput {
	return DocumentOutput{
		ID:       d.ID.String(),
		Name:     d.Name,
		Status:   d.Status.String(),
		Progress: d.Progress(),
		Message:  d.StatusMessage,
		StoreID:  d.RagStoreID.String(),
		InFlight: d.InFlight(),
	}
}
