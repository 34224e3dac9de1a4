package core

import (
	"context"
	"net/http"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

// HTTPDoer is the minimal outbound HTTP contract; *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenSource yields a bearer token valid for the store API scope.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// DocumentCodec converts between records and the store's typed-field
// envelope.
type DocumentCodec interface {
	Encode(record Record) (map[string]TypedField, error)
	Decode(fields map[string]TypedField, documentID string) (Record, error)
}

// Signer applies request authorization from a bearer token.
type Signer interface {
	Sign(ctx context.Context, req *http.Request, token string) error
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

// DocumentIDGenerator produces client-assigned document identifiers for
// create calls when the service is configured to assign them.
type DocumentIDGenerator func() string
