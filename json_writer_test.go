package sitebook

import (
	"testing"
	"time"
)

func TestJsonObjectWriter(t *testing.T) {
	embedded := struct {
		C int    `json:"c"`
		D string `json:"d"`
	}{C: 3, D: "hello"}

	tests := []struct {
		name  string
		write func(w *jsonObjectWriter)
		want  string
	}{
		{"empty", func(w *jsonObjectWriter) {}, `{}`},
		{"ordered", func(w *jsonObjectWriter) {
			w.Append("b", "hello").Append("a", 1)
		}, `{"b":"hello","a":1}`},
		{"escaped key", func(w *jsonObjectWriter) {
			w.Append(`say "hi"`, true)
		}, `{"say \"hi\"":true}`},
		{"optional", func(w *jsonObjectWriter) {
			w.Append("a", 0)
			w.Optional("b", "")
			w.Optional("c", 0)
			w.Optional("d", "hello")
			w.Optional("e", (*time.Time)(nil))
			w.Optional("f", nil)
		}, `{"a":0,"d":"hello"}`},
		{"embed", func(w *jsonObjectWriter) {
			w.Append("a", 1).EmbedFrom(embedded).Append("b", 2)
		}, `{"a":1,"c":3,"d":"hello","b":2}`},
		{"embed first", func(w *jsonObjectWriter) {
			w.EmbedFrom(embedded).Append("b", 2)
		}, `{"c":3,"d":"hello","b":2}`},
		{"embed empty", func(w *jsonObjectWriter) {
			w.EmbedFrom(struct{}{}).Append("b", 2)
		}, `{"b":2}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var w jsonObjectWriter
			tc.write(&w)
			got, err := w.MarshalJSON()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tc.want {
				t.Errorf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestJsonObjectWriter_Errors(t *testing.T) {
	var w jsonObjectWriter
	w.Append("a", make(chan int)).Append("b", 2)
	if _, err := w.MarshalJSON(); err == nil {
		t.Errorf("an unsupported value was encoded")
	}

	var e jsonObjectWriter
	e.EmbedFrom([]int{1, 2})
	if _, err := e.MarshalJSON(); err == nil {
		t.Errorf("a list was embedded as an object")
	}
}
