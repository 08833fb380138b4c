package session

import (
	"encoding/json"
	"time"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleUser    Role = "user"
	RoleAnalyst Role = "analyst"
)

// Turn is one exchange unit in the conversation.
type Turn struct {
	ID        string
	Role      Role
	Content   []Fragment
	Timestamp time.Time
	RequestID string // analyst turns from the structured backend
	Model     string // analyst turns from the multi-model retriever
}

// UserTurn builds the turn appended when the user submits text.
func UserTurn(id, text string, at time.Time) Turn {
	return Turn{ID: id, Role: RoleUser, Content: []Fragment{Text{Body: text}}, Timestamp: at}
}

// Statements returns the SQL fragments of the turn with their
// position in Content.
func (t Turn) Statements() []IndexedSQL {
	var out []IndexedSQL
	for i, f := range t.Content {
		if s, ok := f.(SQL); ok {
			out = append(out, IndexedSQL{Index: i, SQL: s})
		}
	}
	return out
}

// IndexedSQL is a SQL fragment and its index inside a turn.
type IndexedSQL struct {
	Index int
	SQL   SQL
}

// MarshalJSON renders the turn with fragments in their wire shape.
func (t Turn) MarshalJSON() ([]byte, error) {
	content := make([]wireFragment, 0, len(t.Content))
	for _, f := range t.Content {
		content = append(content, toWire(f))
	}
	return json.Marshal(struct {
		ID        string         `json:"id"`
		Role      Role           `json:"role"`
		Content   []wireFragment `json:"content"`
		Timestamp time.Time      `json:"timestamp"`
		RequestID string         `json:"request_id,omitempty"`
		Model     string         `json:"model,omitempty"`
	}{t.ID, t.Role, content, t.Timestamp, t.RequestID, t.Model})
}

func copyTurn(t Turn) Turn {
	c := t
	c.Content = make([]Fragment, len(t.Content))
	for i, f := range t.Content {
		if s, ok := f.(Suggestions); ok {
			s.Options = append([]string(nil), s.Options...)
			f = s
		}
		c.Content[i] = f
	}
	return c
}
