// Package session holds the conversation of one user session: ordered
// turns, the tagged content fragments inside them, and the transient
// UI state that used to live in loose global flags.
//
// Design decisions:
//   - Fragment is a closed sum type. Only Text, Suggestions and SQL
//     implement it, so adding a new kind is a compile-time change that
//     every type switch has to handle.
//   - Turns are appended and never mutated; Store.All hands out copies.
//   - One Store per session. Nothing here is shared between sessions.
package session

import (
	"encoding/json"
	"fmt"
)

// Kind is the wire tag of a fragment.
type Kind string

const (
	KindText        Kind = "text"
	KindSuggestions Kind = "suggestions"
	KindSQL         Kind = "sql"
)

// Fragment is one piece of turn content.
type Fragment interface {
	Kind() Kind
	fragment()
}

// Text is free natural-language text.
type Text struct {
	Body string
}

// Suggestions is a list of follow-up questions the user can click.
type Suggestions struct {
	Options []string
}

// SQL is a statement generated by the analyst service. Executing it
// yields the turn's tabular result.
type SQL struct {
	Statement string
}

func (Text) Kind() Kind        { return KindText }
func (Suggestions) Kind() Kind { return KindSuggestions }
func (SQL) Kind() Kind         { return KindSQL }

func (Text) fragment()        {}
func (Suggestions) fragment() {}
func (SQL) fragment()         {}

// wireFragment is the backend's JSON shape for every fragment kind.
type wireFragment struct {
	Type        Kind     `json:"type"`
	Text        string   `json:"text,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Statement   string   `json:"statement,omitempty"`
}

// ErrUnknownKind is returned when a wire fragment carries a tag we do
// not model.
type ErrUnknownKind struct {
	Tag string
}

func (e *ErrUnknownKind) Error() string {
	return fmt.Sprintf("unknown fragment type %q", e.Tag)
}

// UnmarshalFragment decodes one backend fragment.
func UnmarshalFragment(data []byte) (Fragment, error) {
	var w wireFragment
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode fragment: %w", err)
	}
	switch w.Type {
	case KindText:
		return Text{Body: w.Text}, nil
	case KindSuggestions:
		return Suggestions{Options: w.Suggestions}, nil
	case KindSQL:
		return SQL{Statement: w.Statement}, nil
	default:
		return nil, &ErrUnknownKind{Tag: string(w.Type)}
	}
}

// MarshalFragment encodes a fragment in the backend's wire shape.
func MarshalFragment(f Fragment) ([]byte, error) {
	return json.Marshal(toWire(f))
}

// MarshalFragments encodes a fragment list as a JSON array.
func MarshalFragments(frags []Fragment) ([]byte, error) {
	out := make([]wireFragment, 0, len(frags))
	for _, f := range frags {
		out = append(out, toWire(f))
	}
	return json.Marshal(out)
}

func toWire(f Fragment) wireFragment {
	switch f := f.(type) {
	case Text:
		return wireFragment{Type: KindText, Text: f.Body}
	case Suggestions:
		return wireFragment{Type: KindSuggestions, Suggestions: f.Options}
	case SQL:
		return wireFragment{Type: KindSQL, Statement: f.Statement}
	}
	panic(fmt.Sprintf("session: unhandled fragment %T", f))
}

// TextOf concatenates the bodies of all Text fragments, separated by sep.
func TextOf(frags []Fragment, sep string) string {
	var out string
	first := true
	for _, f := range frags {
		t, ok := f.(Text)
		if !ok {
			continue
		}
		if !first {
			out += sep
		}
		out += t.Body
		first = false
	}
	return out
}
