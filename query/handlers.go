package query

import (
	"context"

	"github.com/goliatone/go-docstore/core"
)

type DocumentReader interface {
	ListDocuments(ctx context.Context, collection string) ([]core.Record, error)
}

type ListDocumentsQuery struct {
	reader DocumentReader
}

func NewListDocumentsQuery(reader DocumentReader) *ListDocumentsQuery {
	return &ListDocumentsQuery{reader: reader}
}

func (q *ListDocumentsQuery) Query(ctx context.Context, msg ListDocumentsMessage) ([]core.Record, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: document reader is required")
	}
	if err := msg.Validate(); err != nil {
		return nil, queryWrapValidation(err, "query: list documents message is invalid")
	}
	return q.reader.ListDocuments(ctx, msg.Collection)
}
