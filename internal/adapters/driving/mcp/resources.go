package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for ragchat resources.
	uriScheme = "ragchat://"
)

// storeResource is the body of a ragchat://stores/{id} resource.
type storeResource struct {
	StoreOutput
	RagStoreName string           `json:"rag_store_name"`
	Documents    []DocumentOutput `json:"documents,omitempty"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "stores",
		Name:        "stores",
		Description: "Stores the signed-in user can chat with",
		MIMEType:    "application/json",
	}, s.handleStoresResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "stores/{id}",
		Name:        "store",
		Description: "A store and the documents it holds",
		MIMEType:    "application/json",
	}, s.handleStoreResource)
}

// handleStoresResource returns all stores.
func (s *Server) handleStoresResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	stores, err := s.ports.Stores.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing stores: %w", err)
	}

	infos := make([]StoreOutput, len(stores))
	for i := range stores {
		infos[i] = storeOutput(&stores[i])
	}
	return jsonResource(req.Params.URI, infos)
}

// handleStoreResource returns one store with its documents.
func (s *Server) handleStoreResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	ref := extractStoreID(req.Params.URI)
	if ref == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	store, err := s.ports.Stores.Find(ctx, ref)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("finding store: %w", err)
	}

	body := storeResource{
		StoreOutput:  storeOutput(store),
		RagStoreName: store.RagStoreName,
	}
	if s.ports.Documents != nil {
		docs, err := s.ports.Documents.List(ctx, domain.DocumentFilter{StoreID: store.ID})
		if err != nil {
			return nil, fmt.Errorf("listing documents: %w", err)
		}
		for i := range docs {
			body.Documents = append(body.Documents, documentOutput(&docs[i]))
		}
	}
	return jsonResource(req.Params.URI, body)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractStoreID extracts the store reference from a URI like ragchat://stores/{id}.
func extractStoreID(uri string) string {
	const prefix = uriScheme + "stores/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
