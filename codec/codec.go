// Package codec converts between generic records and the store's typed-field
// wire envelope.
package codec

import (
	"strconv"
	"time"

	"github.com/goliatone/go-docstore/core"
)

// TimestampField is the synthetic receipt-time field appended on every
// encode. Server receipt time, not client-declared time, is authoritative:
// a caller-supplied value under this key is always overwritten.
const TimestampField = "timestamp"

// IDField is the synthetic identifier key set on every decoded record from
// the document's trailing resource-path segment.
const IDField = "id"

// FieldCodec implements core.DocumentCodec.
//
// Unsupported value shapes (objects, arrays, null) never fail encoding:
// they are carried as their canonical JSON text in a string field, the
// opaque-JSON fallback policy. Wire integers are decimal text; decoding
// parses them into int64, so values beyond the int64 range are kept as text
// rather than silently truncated.
type FieldCodec struct {
	now func() time.Time
}

func NewFieldCodec(now func() time.Time) *FieldCodec {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &FieldCodec{now: now}
}

func (c *FieldCodec) Encode(record core.Record) (map[string]core.TypedField, error) {
	fields := make(map[string]core.TypedField, len(record)+1)
	for key, value := range record {
		if key == TimestampField {
			continue
		}
		fields[key] = encodeValue(value)
	}
	instant := c.now().UTC().Format(time.RFC3339)
	fields[TimestampField] = core.TypedField{TimestampValue: &instant}
	return fields, nil
}

func encodeValue(value core.Value) core.TypedField {
	switch value.Kind {
	case core.ValueKindInteger:
		encoded := strconv.FormatInt(value.Integer, 10)
		return core.TypedField{IntegerValue: &encoded}
	case core.ValueKindFloat:
		encoded := value.Float
		return core.TypedField{DoubleValue: &encoded}
	case core.ValueKindBoolean:
		encoded := value.Boolean
		return core.TypedField{BooleanValue: &encoded}
	default:
		// Text and opaque JSON both travel as string fields.
		encoded := value.Text
		return core.TypedField{StringValue: &encoded}
	}
}

// Decode unpacks a typed-field map into a record carrying the document id.
// Entries with an empty or unrecognized variant are silently omitted;
// decoding never fails for them. Timestamp values stay as their instant
// string; callers that need ordering parse them.
func (c *FieldCodec) Decode(fields map[string]core.TypedField, documentID string) (core.Record, error) {
	record := make(core.Record, len(fields)+1)
	record[IDField] = core.TextValue(documentID)
	for key, field := range fields {
		if key == IDField {
			// The resource path is authoritative for the id; a stored field
			// under the same key never overrides it.
			continue
		}
		value, ok := decodeField(field)
		if !ok {
			continue
		}
		record[key] = value
	}
	return record, nil
}

func decodeField(field core.TypedField) (core.Value, bool) {
	switch {
	case field.StringValue != nil:
		return core.TextValue(*field.StringValue), true
	case field.IntegerValue != nil:
		parsed, err := strconv.ParseInt(*field.IntegerValue, 10, 64)
		if err != nil {
			// Out-of-range decimal text survives as text instead of losing
			// precision.
			return core.TextValue(*field.IntegerValue), true
		}
		return core.IntegerValue(parsed), true
	case field.DoubleValue != nil:
		return core.FloatValue(*field.DoubleValue), true
	case field.BooleanValue != nil:
		return core.BooleanValue(*field.BooleanValue), true
	case field.TimestampValue != nil:
		return core.TextValue(*field.TimestampValue), true
	default:
		return core.Value{}, false
	}
}

var _ core.DocumentCodec = (*FieldCodec)(nil)
