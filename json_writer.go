package sitebook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// jsonObjectWriter builds a JSON object whose fields keep the order they are
// written in. The first error is kept and returned by MarshalJSON; later
// calls are no-ops. Its zero value is an empty object.
type jsonObjectWriter struct {
	fields bytes.Buffer
	err    error
}

// raw writes the encoded members of an object, without their braces.
func (w *jsonObjectWriter) raw(members []byte) {
	if len(members) == 0 {
		return
	}
	if w.fields.Len() > 0 {
		w.fields.WriteByte(',')
	}
	w.fields.Write(members)
}

// Append writes the key and the JSON encoding of value.
func (w *jsonObjectWriter) Append(key string, value any) *jsonObjectWriter {
	if w.err != nil {
		return w
	}
	k, _ := json.Marshal(key)
	v, err := json.Marshal(value)
	if err != nil {
		w.err = fmt.Errorf("encode %q: %w", key, err)
		return w
	}
	w.raw(append(append(k, ':'), v...))
	return w
}

// Optional is Append, skipped for the zero value of any type (nil pointers
// included).
func (w *jsonObjectWriter) Optional(key string, value any) *jsonObjectWriter {
	if v := reflect.ValueOf(value); !v.IsValid() || v.IsZero() {
		return w
	}
	return w.Append(key, value)
}

// EmbedFrom inlines the members of value, which must encode as an object.
func (w *jsonObjectWriter) EmbedFrom(value any) *jsonObjectWriter {
	if w.err != nil {
		return w
	}
	data, err := json.Marshal(value)
	if err != nil {
		w.err = fmt.Errorf("encode embedded %T: %w", value, err)
		return w
	}
	data = bytes.TrimSpace(data)
	if len(data) < 2 || data[0] != '{' || data[len(data)-1] != '}' {
		w.err = fmt.Errorf("embedded %T is not an object: %s", value, data)
		return w
	}
	w.raw(bytes.TrimSpace(data[1 : len(data)-1]))
	return w
}

func (w *jsonObjectWriter) MarshalJSON() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	out := make([]byte, 0, w.fields.Len()+2)
	out = append(out, '{')
	out = append(out, w.fields.Bytes()...)
	return append(out, '}'), nil
}
