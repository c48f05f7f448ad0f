package changeset

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/puzpuzpuz/xsync/v3"
)

// directEncodeLimit is the field count at or below which blobs are built by
// direct buffer concatenation instead of going through an intermediate map.
// Three is an empirical cutoff: below it, building and discarding the map
// costs more than writing the pairs straight out.
const directEncodeLimit = 3

// ErrLengthMismatch reports that Encode was called with field name and value
// sequences of differing lengths. This is a programming error in the caller,
// not a recoverable condition.
var ErrLengthMismatch = errors.New("changeset: field names and values differ in length")

// DecodeError reports a malformed blob. Blobs are only ever produced by
// Encode, so a DecodeError means the stored audit record is not trustworthy;
// callers must surface it, never swallow it.
type DecodeError struct {
	Field string
	Err   error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("changeset: malformed blob while reading field %q: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("changeset: malformed blob: %v", e.Err)
}

// Unwrap returns the underlying parse error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Path counters let diagnostics confirm which encode path served a workload.
// Approximate under contention, like every counter in this module.
var (
	directEncodes = xsync.NewCounter()
	mappedEncodes = xsync.NewCounter()
)

// EncodePathCounts reports how many encodes took the direct path and how many
// took the map path since process start.
func EncodePathCounts() (direct, mapped int64) {
	return directEncodes.Value(), mappedEncodes.Value()
}

// Encode serializes the before and after values of an audited mutation into
// two opaque, self-describing text blobs. fields, oldValues and newValues
// must have equal length; a mismatch returns ErrLengthMismatch.
func Encode(fields []string, oldValues, newValues []any) (oldBlob, newBlob string, err error) {
	if len(fields) != len(oldValues) || len(fields) != len(newValues) {
		return "", "", ErrLengthMismatch
	}

	oldBlob, err = encodeSet(fields, oldValues)
	if err != nil {
		return "", "", err
	}
	newBlob, err = encodeSet(fields, newValues)
	if err != nil {
		return "", "", err
	}
	return oldBlob, newBlob, nil
}

// encodeSet writes one field set. Small sets skip the intermediate map.
func encodeSet(fields []string, values []any) (string, error) {
	if len(fields) == 0 {
		return "", nil
	}
	if len(fields) <= directEncodeLimit {
		directEncodes.Inc()
		return encodeDirect(fields, values)
	}

	mappedEncodes.Inc()
	m := make(map[string]any, len(fields))
	for i, f := range fields {
		m[f] = values[i]
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("changeset: encoding %d fields: %w", len(fields), err)
	}
	return string(raw), nil
}

// encodeDirect concatenates the field/value pairs straight into a buffer,
// preserving the caller's field order.
func encodeDirect(fields []string, values []any) (string, error) {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			sb.WriteByte(',')
		}
		name, err := json.Marshal(f)
		if err != nil {
			return "", fmt.Errorf("changeset: encoding field name %q: %w", f, err)
		}
		val, err := json.Marshal(values[i])
		if err != nil {
			return "", fmt.Errorf("changeset: encoding field %q: %w", f, err)
		}
		sb.Write(name)
		sb.WriteByte(':')
		sb.Write(val)
	}
	sb.WriteByte('}')
	return sb.String(), nil
}

// DecodeField locates one named field inside a blob and returns its value
// without materializing the full field map. An empty blob or an absent field
// is a normal outcome, reported via present=false with a nil error;
// partially-changed records make both common.
func DecodeField(blob, field string) (value any, present bool, err error) {
	if blob == "" {
		return nil, false, nil
	}

	dec := json.NewDecoder(strings.NewReader(blob))

	tok, err := dec.Token()
	if err != nil {
		return nil, false, &DecodeError{Field: field, Err: err}
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, false, &DecodeError{Field: field, Err: fmt.Errorf("expected object, found %v", tok)}
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, false, &DecodeError{Field: field, Err: err}
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, false, &DecodeError{Field: field, Err: fmt.Errorf("expected field name, found %v", keyTok)}
		}

		if key == field {
			var v any
			if err := dec.Decode(&v); err != nil {
				return nil, false, &DecodeError{Field: field, Err: err}
			}
			return v, true, nil
		}

		if err := skipValue(dec); err != nil {
			return nil, false, &DecodeError{Field: field, Err: err}
		}
	}

	// Consume the closing brace so a truncated blob is reported as
	// corruption rather than a quiet absence.
	if _, err := dec.Token(); err != nil {
		return nil, false, &DecodeError{Field: field, Err: err}
	}

	return nil, false, nil
}

// DecodeAll materializes the full field map. Strictly more expensive than
// DecodeField for single-field access; kept for callers that need every
// field at once. An empty blob yields a nil map.
func DecodeAll(blob string) (map[string]any, error) {
	if blob == "" {
		return nil, nil
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(blob), &m); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return m, nil
}

// skipValue consumes exactly one JSON value, tracking delimiter depth so
// nested objects and arrays are skipped whole.
func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	d, ok := tok.(json.Delim)
	if !ok || (d != '{' && d != '[') {
		return nil
	}

	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return nil
}
