package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

const maxStoreResponseBodyBytes = 1 << 20

// Service is the document-store client core: it obtains a token, converts
// records through the codec, and issues the underlying HTTP calls. It
// performs no retries; every failure propagates as a typed error carrying
// the original cause.
type Service struct {
	config          Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorMapper     ErrorMapper
	httpClient      HTTPDoer
	tokenSource     TokenSource
	codec           DocumentCodec
	signer          Signer
	idGenerator     DocumentIDGenerator
	now             func() time.Time
}

type ServiceDependencies struct {
	Logger          Logger
	LoggerProvider  LoggerProvider
	MetricsRecorder MetricsRecorder
	ErrorMapper     ErrorMapper
	HTTPClient      HTTPDoer
	TokenSource     TokenSource
	Codec           DocumentCodec
	Signer          Signer
}

func NewService(cfg Config, options ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("docstore", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("docstore"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.signer == nil {
		builder.signer = BearerTokenSigner{}
	}
	if builder.now == nil {
		builder.now = func() time.Time { return time.Now().UTC() }
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	if builder.tokenSource == nil {
		return nil, mapBuildError(builder.errorMapper, fmt.Errorf("core: token source is required"))
	}
	if builder.codec == nil {
		return nil, mapBuildError(builder.errorMapper, fmt.Errorf("core: document codec is required"))
	}
	if builder.httpClient == nil {
		builder.httpClient = &http.Client{Timeout: finalConfig.HTTP.RequestTimeout}
	}

	return &Service{
		config:          finalConfig,
		logger:          logger,
		loggerProvider:  provider,
		metricsRecorder: builder.metricsRecorder,
		errorMapper:     builder.errorMapper,
		httpClient:      builder.httpClient,
		tokenSource:     builder.tokenSource,
		codec:           builder.codec,
		signer:          builder.signer,
		idGenerator:     builder.idGenerator,
		now:             builder.now,
	}, nil
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Dependencies() ServiceDependencies {
	if s == nil {
		return ServiceDependencies{}
	}
	return ServiceDependencies{
		Logger:          s.logger,
		LoggerProvider:  s.loggerProvider,
		MetricsRecorder: s.metricsRecorder,
		ErrorMapper:     s.errorMapper,
		HTTPClient:      s.httpClient,
		TokenSource:     s.tokenSource,
		Codec:           s.codec,
		Signer:          s.signer,
	}
}

// CreateDocument encodes the record and issues a bearer-authorized create
// call against the collection. The created document, including its full
// resource path, is returned as the store reported it.
func (s *Service) CreateDocument(ctx context.Context, collection string, record Record) (StoredDocument, error) {
	startedAt := s.clockNow()
	doc, err := s.createDocument(ctx, collection, record)
	s.observeOperation(ctx, startedAt, "create_document", err, map[string]any{
		"collection": strings.TrimSpace(collection),
	})
	return doc, err
}

func (s *Service) createDocument(ctx context.Context, collection string, record Record) (StoredDocument, error) {
	if s == nil {
		return StoredDocument{}, fmt.Errorf("core: service is nil")
	}
	collection = strings.TrimSpace(collection)
	if collection == "" {
		return StoredDocument{}, s.mapError(fmt.Errorf("core: collection is required"))
	}

	token, err := s.tokenSource.Token(ctx)
	if err != nil {
		return StoredDocument{}, s.mapError(err)
	}

	fields, err := s.codec.Encode(record)
	if err != nil {
		return StoredDocument{}, s.mapError(fmt.Errorf("core: encode record: %w", err))
	}

	payload, err := json.Marshal(map[string]any{"fields": fields})
	if err != nil {
		return StoredDocument{}, s.mapError(fmt.Errorf("core: encode create body: %w", err))
	}

	requestURL := s.collectionURL(collection)
	if s.config.AssignDocumentIDs && s.idGenerator != nil {
		requestURL += "?documentId=" + url.QueryEscape(s.idGenerator())
	}

	body, err := s.doRequest(ctx, http.MethodPost, requestURL, token, payload)
	if err != nil {
		return StoredDocument{}, s.mapError(err)
	}

	doc := StoredDocument{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return StoredDocument{}, s.mapError(fmt.Errorf("core: decode created document: %w", err))
	}
	return doc, nil
}

// ListDocuments fetches every document in the collection and decodes each
// into a record, using the trailing resource-path segment as its id. An
// absent documents field is an empty collection, not an error. The store's
// native response order is preserved.
func (s *Service) ListDocuments(ctx context.Context, collection string) ([]Record, error) {
	startedAt := s.clockNow()
	records, err := s.listDocuments(ctx, collection)
	s.observeOperation(ctx, startedAt, "list_documents", err, map[string]any{
		"collection": strings.TrimSpace(collection),
		"count":      len(records),
	})
	return records, err
}

func (s *Service) listDocuments(ctx context.Context, collection string) ([]Record, error) {
	if s == nil {
		return nil, fmt.Errorf("core: service is nil")
	}
	collection = strings.TrimSpace(collection)
	if collection == "" {
		return nil, s.mapError(fmt.Errorf("core: collection is required"))
	}

	token, err := s.tokenSource.Token(ctx)
	if err != nil {
		return nil, s.mapError(err)
	}

	body, err := s.doRequest(ctx, http.MethodGet, s.collectionURL(collection), token, nil)
	if err != nil {
		return nil, s.mapError(err)
	}

	listing := struct {
		Documents []StoredDocument `json:"documents"`
	}{}
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, s.mapError(fmt.Errorf("core: decode list response: %w", err))
	}

	records := make([]Record, 0, len(listing.Documents))
	for _, doc := range listing.Documents {
		record, decodeErr := s.codec.Decode(doc.Fields, doc.ID())
		if decodeErr != nil {
			return nil, s.mapError(fmt.Errorf("core: decode document %q: %w", doc.ID(), decodeErr))
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *Service) doRequest(ctx context.Context, method string, requestURL string, token string, payload []byte) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	requestCtx := ctx
	cancel := func() {}
	if s.config.HTTP.RequestTimeout > 0 {
		requestCtx, cancel = context.WithTimeout(ctx, s.config.HTTP.RequestTimeout)
	}
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(requestCtx, method, requestURL, reader)
	if err != nil {
		return nil, fmt.Errorf("core: build store request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if err := s.signer.Sign(requestCtx, req, token); err != nil {
		return nil, err
	}

	response, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("core: store request failed: %w", err)
	}
	defer response.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(response.Body, maxStoreResponseBodyBytes+1))
	if readErr != nil {
		return nil, fmt.Errorf("core: read store response: %w", readErr)
	}
	if int64(len(body)) > maxStoreResponseBodyBytes {
		return nil, fmt.Errorf("core: store response exceeds %d bytes", maxStoreResponseBodyBytes)
	}
	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("core: store status %d: %s", response.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

func (s *Service) clockNow() time.Time {
	if s == nil || s.now == nil {
		return time.Now().UTC()
	}
	return s.now()
}

func (s *Service) collectionURL(collection string) string {
	endpoint := strings.TrimRight(strings.TrimSpace(s.config.Endpoint), "/")
	return fmt.Sprintf(
		"%s/v1/projects/%s/databases/%s/documents/%s",
		endpoint,
		url.PathEscape(strings.TrimSpace(s.config.ProjectID)),
		url.PathEscape(strings.TrimSpace(s.config.DatabaseID)),
		url.PathEscape(collection),
	)
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	mapped := s.errorMapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}
