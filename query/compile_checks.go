package query

import (
	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-docstore/core"
)

var (
	_ gocmd.Querier[ListDocumentsMessage, []core.Record] = (*ListDocumentsQuery)(nil)
)
