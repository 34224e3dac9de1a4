package core

import (
	"encoding/json"
	"math"
	"strings"
)

// ValueKind enumerates the closed set of scalar shapes a record value can take.
type ValueKind string

const (
	ValueKindText    ValueKind = "text"
	ValueKindInteger ValueKind = "integer"
	ValueKindFloat   ValueKind = "float"
	ValueKindBoolean ValueKind = "boolean"
	// ValueKindOpaque carries the canonical JSON serialization of a value the
	// wire format cannot represent natively (objects, arrays, null).
	ValueKindOpaque ValueKind = "opaque"
)

// Value is a tagged scalar. Exactly one payload field is meaningful, selected
// by Kind.
type Value struct {
	Kind    ValueKind
	Text    string
	Integer int64
	Float   float64
	Boolean bool
}

func TextValue(value string) Value {
	return Value{Kind: ValueKindText, Text: value}
}

func IntegerValue(value int64) Value {
	return Value{Kind: ValueKindInteger, Integer: value}
}

func FloatValue(value float64) Value {
	return Value{Kind: ValueKindFloat, Float: value}
}

func BooleanValue(value bool) Value {
	return Value{Kind: ValueKindBoolean, Boolean: value}
}

func OpaqueValue(jsonText string) Value {
	return Value{Kind: ValueKindOpaque, Text: jsonText}
}

// Record maps field names to tagged scalar values. Key order carries no
// semantics.
type Record map[string]Value

// RecordFromJSON classifies the values of a decoded JSON object into the
// closed Value union. Numbers without a fractional component become integers;
// everything the union cannot represent natively collapses to its canonical
// JSON text (the opaque-JSON fallback policy).
func RecordFromJSON(raw map[string]any) Record {
	record := make(Record, len(raw))
	for key, value := range raw {
		record[key] = classifyJSONValue(value)
	}
	return record
}

func classifyJSONValue(value any) Value {
	switch typed := value.(type) {
	case string:
		return TextValue(typed)
	case bool:
		return BooleanValue(typed)
	case int:
		return IntegerValue(int64(typed))
	case int64:
		return IntegerValue(typed)
	case float64:
		// The upper bound is strict: MaxInt64 rounds up to 2^63 as a
		// float64, and 2^63 itself overflows int64.
		if typed == math.Trunc(typed) && typed >= math.MinInt64 && typed < 1<<63 {
			return IntegerValue(int64(typed))
		}
		return FloatValue(typed)
	case json.Number:
		if parsed, err := typed.Int64(); err == nil {
			return IntegerValue(parsed)
		}
		if parsed, err := typed.Float64(); err == nil {
			return FloatValue(parsed)
		}
		return OpaqueValue(string(typed))
	default:
		encoded, err := json.Marshal(value)
		if err != nil {
			// json.Marshal on decoded JSON input cannot fail; keep the
			// no-data-loss policy even for exotic caller-provided values.
			return OpaqueValue("null")
		}
		return OpaqueValue(string(encoded))
	}
}

// JSONMap renders the record back into plain JSON-compatible values. Opaque
// values stay as their JSON text.
func (r Record) JSONMap() map[string]any {
	out := make(map[string]any, len(r))
	for key, value := range r {
		switch value.Kind {
		case ValueKindText, ValueKindOpaque:
			out[key] = value.Text
		case ValueKindInteger:
			out[key] = value.Integer
		case ValueKindFloat:
			out[key] = value.Float
		case ValueKindBoolean:
			out[key] = value.Boolean
		}
	}
	return out
}

// TypedField is the store's wire envelope for a single value. Exactly one
// variant is populated; integers travel as decimal text and timestamps as
// RFC3339 UTC instants.
type TypedField struct {
	StringValue    *string  `json:"stringValue,omitempty"`
	IntegerValue   *string  `json:"integerValue,omitempty"`
	DoubleValue    *float64 `json:"doubleValue,omitempty"`
	BooleanValue   *bool    `json:"booleanValue,omitempty"`
	TimestampValue *string  `json:"timestampValue,omitempty"`
}

// StoredDocument is the store's representation of a created document. It is
// read-only to this module once returned.
type StoredDocument struct {
	Name       string                `json:"name"`
	Fields     map[string]TypedField `json:"fields,omitempty"`
	CreateTime string                `json:"createTime,omitempty"`
	UpdateTime string                `json:"updateTime,omitempty"`
}

// ID returns the trailing segment of the document resource path.
func (d StoredDocument) ID() string {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return ""
	}
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		return name[idx+1:]
	}
	return name
}

// SigningIdentity is the immutable identity material used to mint signed
// assertions. Supplied by the process environment; never mutated here.
type SigningIdentity struct {
	ServiceIdentity string
	PrivateKey      []byte
	TokenAudience   string
	Scope           string
}
