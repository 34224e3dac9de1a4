package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-docstore/core"
)

type MutatingService interface {
	CreateDocument(ctx context.Context, collection string, record core.Record) (core.StoredDocument, error)
}

type CreateDocumentCommand struct {
	service MutatingService
}

func NewCreateDocumentCommand(service MutatingService) *CreateDocumentCommand {
	return &CreateDocumentCommand{service: service}
}

func (c *CreateDocumentCommand) Execute(ctx context.Context, msg CreateDocumentMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: create document service is required")
	}
	if err := msg.Validate(); err != nil {
		return commandWrapValidation(err, "command: create document message is invalid")
	}
	out, err := c.service.CreateDocument(ctx, msg.Collection, msg.Record)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
