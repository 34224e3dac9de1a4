package query

import (
	"fmt"
	"strings"
)

const (
	TypeListDocuments = "docstore.query.document.list"
)

type ListDocumentsMessage struct {
	Collection string
}

func (ListDocumentsMessage) Type() string { return TypeListDocuments }

func (m ListDocumentsMessage) Validate() error {
	if strings.TrimSpace(m.Collection) == "" {
		return fmt.Errorf("query: collection is required")
	}
	return nil
}
