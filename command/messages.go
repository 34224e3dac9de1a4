package command

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-docstore/core"
)

const (
	TypeCreateDocument = "docstore.command.document.create"
)

type CreateDocumentMessage struct {
	Collection string
	Record     core.Record
}

func (CreateDocumentMessage) Type() string { return TypeCreateDocument }

func (m CreateDocumentMessage) Validate() error {
	if strings.TrimSpace(m.Collection) == "" {
		return fmt.Errorf("command: collection is required")
	}
	return nil
}
