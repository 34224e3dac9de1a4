// Package docstore is a client for a remote document store that
// authenticates with short-lived signed credentials and converts generic
// records to and from the store's typed wire representation.
package docstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-docstore/auth"
	"github.com/goliatone/go-docstore/codec"
	"github.com/goliatone/go-docstore/command"
	"github.com/goliatone/go-docstore/core"
	"github.com/goliatone/go-docstore/query"
)

type Commands struct {
	CreateDocument *command.CreateDocumentCommand
}

type Queries struct {
	ListDocuments *query.ListDocumentsQuery
}

// Client is the composed document-store facade. Operations take plain
// collection names and generic records; no transport concern leaks through
// this boundary.
type Client struct {
	service  *core.Service
	manager  *auth.CredentialManager
	commands Commands
	queries  Queries
}

// tokenSourceHandle stands in for the credential manager during service
// construction. The manager needs the resolved config, which only exists
// once NewService has merged the defaults, config-provider, and runtime
// layers, so the facade binds it after the fact.
type tokenSourceHandle struct {
	mu     sync.Mutex
	source core.TokenSource
}

func (h *tokenSourceHandle) bind(source core.TokenSource) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.source = source
}

func (h *tokenSourceHandle) Token(ctx context.Context) (string, error) {
	h.mu.Lock()
	source := h.source
	h.mu.Unlock()
	if source == nil {
		return "", fmt.Errorf("docstore: token source is not configured")
	}
	return source.Token(ctx)
}

// New wires the credential manager and field codec into the client core.
// Options are applied after the composition defaults, so callers can swap
// any piece (token source, codec, HTTP client) for their own.
func New(cfg core.Config, options ...core.Option) (*Client, error) {
	handle := &tokenSourceHandle{}
	fieldCodec := codec.NewFieldCodec(nil)

	composed := append([]core.Option{
		core.WithTokenSource(handle),
		core.WithDocumentCodec(fieldCodec),
		core.WithDocumentIDGenerator(uuid.NewString),
	}, options...)

	service, err := core.NewService(cfg, composed...)
	if err != nil {
		return nil, err
	}

	// The manager reads the resolved config and the service's HTTP client so
	// auth settings contributed by defaults or a config provider reach
	// signing and exchange.
	resolved := service.Config()
	deps := service.Dependencies()
	manager := auth.NewCredentialManager(auth.CredentialManagerConfig{
		Identity:    resolved.SigningIdentity(),
		TokenTTL:    resolved.Auth.TokenTTL,
		RenewBefore: resolved.Auth.RenewBefore,
		HTTPClient:  deps.HTTPClient,
		Logger:      deps.Logger,
	})
	handle.bind(manager)

	client := &Client{
		service: service,
		manager: manager,
	}
	client.commands = Commands{
		CreateDocument: command.NewCreateDocumentCommand(service),
	}
	client.queries = Queries{
		ListDocuments: query.NewListDocumentsQuery(service),
	}
	return client, nil
}

// CreateDocument stores the record in the collection and returns the created
// document as the store reported it.
func (c *Client) CreateDocument(ctx context.Context, collection string, record core.Record) (core.StoredDocument, error) {
	if c == nil || c.service == nil {
		return core.StoredDocument{}, fmt.Errorf("docstore: client is not configured")
	}
	return c.service.CreateDocument(ctx, collection, record)
}

// ListDocuments fetches every document in the collection. An empty
// collection yields an empty slice, not an error.
func (c *Client) ListDocuments(ctx context.Context, collection string) ([]core.Record, error) {
	if c == nil || c.service == nil {
		return nil, fmt.Errorf("docstore: client is not configured")
	}
	return c.service.ListDocuments(ctx, collection)
}

func (c *Client) Commands() Commands {
	if c == nil {
		return Commands{}
	}
	return c.commands
}

func (c *Client) Queries() Queries {
	if c == nil {
		return Queries{}
	}
	return c.queries
}

func (c *Client) Service() *core.Service {
	if c == nil {
		return nil
	}
	return c.service
}
