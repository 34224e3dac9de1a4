package core

import (
	"context"
	"fmt"
	"strconv"
	"sync"
)

type stubLogger struct{}

func (stubLogger) Trace(string, ...any) {}
func (stubLogger) Debug(string, ...any) {}
func (stubLogger) Info(string, ...any)  {}
func (stubLogger) Warn(string, ...any)  {}
func (stubLogger) Error(string, ...any) {}
func (stubLogger) Fatal(string, ...any) {}
func (s stubLogger) WithContext(context.Context) Logger {
	return s
}

type stubLoggerProvider struct {
	logger Logger
}

func (s stubLoggerProvider) GetLogger(string) Logger {
	return s.logger
}

type mapRawLoader struct {
	values map[string]any
}

func (l mapRawLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.values))
	for key, value := range l.values {
		out[key] = value
	}
	return out, nil
}

type stubTokenSource struct {
	token string
	err   error
	calls int
}

func (s *stubTokenSource) Token(context.Context) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.token, nil
}

// stubFieldCodec mirrors the production codec shape without importing it; the
// codec package depends on this one.
type stubFieldCodec struct {
	encodeErr error
	decodeErr error
}

func (c stubFieldCodec) Encode(record Record) (map[string]TypedField, error) {
	if c.encodeErr != nil {
		return nil, c.encodeErr
	}
	fields := make(map[string]TypedField, len(record))
	for key, value := range record {
		switch value.Kind {
		case ValueKindInteger:
			text := strconv.FormatInt(value.Integer, 10)
			fields[key] = TypedField{IntegerValue: &text}
		case ValueKindFloat:
			double := value.Float
			fields[key] = TypedField{DoubleValue: &double}
		case ValueKindBoolean:
			flag := value.Boolean
			fields[key] = TypedField{BooleanValue: &flag}
		default:
			text := value.Text
			fields[key] = TypedField{StringValue: &text}
		}
	}
	return fields, nil
}

func (c stubFieldCodec) Decode(fields map[string]TypedField, documentID string) (Record, error) {
	if c.decodeErr != nil {
		return nil, c.decodeErr
	}
	record := Record{"id": TextValue(documentID)}
	for key, field := range fields {
		switch {
		case field.StringValue != nil:
			record[key] = TextValue(*field.StringValue)
		case field.IntegerValue != nil:
			parsed, err := strconv.ParseInt(*field.IntegerValue, 10, 64)
			if err != nil {
				record[key] = TextValue(*field.IntegerValue)
				continue
			}
			record[key] = IntegerValue(parsed)
		case field.DoubleValue != nil:
			record[key] = FloatValue(*field.DoubleValue)
		case field.BooleanValue != nil:
			record[key] = BooleanValue(*field.BooleanValue)
		case field.TimestampValue != nil:
			record[key] = TextValue(*field.TimestampValue)
		}
	}
	return record, nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.ProjectID = "demo-project"
	return cfg
}

type capturedCounter struct {
	name  string
	value int64
	tags  map[string]string
}

type capturedHistogram struct {
	name  string
	value float64
	tags  map[string]string
}

type captureMetricsRecorder struct {
	mu         sync.Mutex
	counters   []capturedCounter
	histograms []capturedHistogram
}

func (m *captureMetricsRecorder) IncCounter(_ context.Context, name string, value int64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters = append(m.counters, capturedCounter{name: name, value: value, tags: cloneTags(tags)})
}

func (m *captureMetricsRecorder) ObserveHistogram(_ context.Context, name string, value float64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.histograms = append(m.histograms, capturedHistogram{name: name, value: value, tags: cloneTags(tags)})
}

type capturedLog struct {
	level  string
	msg    string
	fields map[string]any
}

type captureLogger struct {
	mu       *sync.Mutex
	records  *[]capturedLog
	defaults map[string]any
}

func newCaptureLogger() *captureLogger {
	records := []capturedLog{}
	return &captureLogger{mu: &sync.Mutex{}, records: &records, defaults: map[string]any{}}
}

func (l *captureLogger) WithFields(fields map[string]any) Logger {
	merged := cloneFields(l.defaults)
	for key, value := range fields {
		merged[key] = value
	}
	return &captureLogger{mu: l.mu, records: l.records, defaults: merged}
}

func (l *captureLogger) Trace(msg string, args ...any) { l.record("trace", msg, args...) }
func (l *captureLogger) Debug(msg string, args ...any) { l.record("debug", msg, args...) }
func (l *captureLogger) Info(msg string, args ...any)  { l.record("info", msg, args...) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args...) }
func (l *captureLogger) Error(msg string, args ...any) { l.record("error", msg, args...) }
func (l *captureLogger) Fatal(msg string, args ...any) { l.record("fatal", msg, args...) }

func (l *captureLogger) WithContext(context.Context) Logger {
	return &captureLogger{mu: l.mu, records: l.records, defaults: cloneFields(l.defaults)}
}

func (l *captureLogger) record(level string, msg string, args ...any) {
	fields := cloneFields(l.defaults)
	for index := 0; index+1 < len(args); index += 2 {
		key, ok := args[index].(string)
		if !ok {
			continue
		}
		fields[key] = args[index+1]
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.records = append(*l.records, capturedLog{level: level, msg: msg, fields: fields})
}

func (l *captureLogger) snapshot() []capturedLog {
	l.mu.Lock()
	defer l.mu.Unlock()
	items := *l.records
	out := make([]capturedLog, len(items))
	copy(out, items)
	return out
}

func hasCounter(items []capturedCounter, name string, status string) bool {
	for _, item := range items {
		if item.name == name && item.tags["status"] == status {
			return true
		}
	}
	return false
}

func hasHistogram(items []capturedHistogram, name string, status string) bool {
	for _, item := range items {
		if item.name == name && item.tags["status"] == status {
			return true
		}
	}
	return false
}

func hasLog(items []capturedLog, level string, message string, eventType string) bool {
	for _, item := range items {
		if item.level != level || item.msg != message {
			continue
		}
		if eventType == "" {
			return true
		}
		if fmt.Sprint(item.fields["event_type"]) == eventType {
			return true
		}
	}
	return false
}
