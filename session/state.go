package session

// Mode selects which backend answers a submitted utterance.
type Mode string

const (
	ModeStructured   Mode = "structured"
	ModeUnstructured Mode = "unstructured"
)

// ParseMode maps user input onto a Mode. Unknown values are rejected.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeStructured, ModeUnstructured:
		return Mode(s), true
	}
	return "", false
}

// Flag names accepted by Store.SetFlag and Store.Flag.
const (
	FlagChatMode          = "chat_mode"
	FlagTyping            = "typing"
	FlagPendingSuggestion = "pending_suggestion"
	FlagAutoExpandSQL     = "auto_expand_sql"
	FlagShowDebug         = "show_debug"
	FlagLastError         = "last_error"
)

// State is the transient UI state of one session.
//
//	flag                type    default      owner
//	chat_mode           Mode    structured   mode selector
//	typing              bool    false        controller, scoped to the backend call
//	pending_suggestion  string  ""           suggestion click, drained by the controller
//	auto_expand_sql     bool    false        preferences
//	show_debug          bool    false        preferences (request IDs)
//	last_error          string  ""           controller (malformed responses)
type State struct {
	ChatMode          Mode   `json:"chat_mode"`
	Typing            bool   `json:"typing"`
	PendingSuggestion string `json:"pending_suggestion"`
	AutoExpandSQL     bool   `json:"auto_expand_sql"`
	ShowDebug         bool   `json:"show_debug"`
	LastError         string `json:"last_error"`
}

// DefaultState returns the state of a fresh session.
func DefaultState() State {
	return State{ChatMode: ModeStructured}
}

func (s State) get(name string) (any, bool) {
	switch name {
	case FlagChatMode:
		return s.ChatMode, true
	case FlagTyping:
		return s.Typing, true
	case FlagPendingSuggestion:
		return s.PendingSuggestion, true
	case FlagAutoExpandSQL:
		return s.AutoExpandSQL, true
	case FlagShowDebug:
		return s.ShowDebug, true
	case FlagLastError:
		return s.LastError, true
	}
	return nil, false
}

// set assigns a known flag. It reports false for unknown names and
// for values of the wrong type.
func (s *State) set(name string, v any) bool {
	switch name {
	case FlagChatMode:
		switch m := v.(type) {
		case Mode:
			s.ChatMode = m
		case string:
			mode, ok := ParseMode(m)
			if !ok {
				return false
			}
			s.ChatMode = mode
		default:
			return false
		}
	case FlagTyping:
		b, ok := v.(bool)
		if !ok {
			return false
		}
		s.Typing = b
	case FlagAutoExpandSQL:
		b, ok := v.(bool)
		if !ok {
			return false
		}
		s.AutoExpandSQL = b
	case FlagShowDebug:
		b, ok := v.(bool)
		if !ok {
			return false
		}
		s.ShowDebug = b
	case FlagLastError:
		str, ok := v.(string)
		if !ok {
			return false
		}
		s.LastError = str
	default:
		return false
	}
	return true
}
