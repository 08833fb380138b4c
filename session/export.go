package session

import (
	"encoding/json"
	"time"
)

// ExportTimeLayout is the timestamp format of chat exports.
const ExportTimeLayout = "2006-01-02 15:04:05"

// ExportMessage is one turn in a chat export.
type ExportMessage struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// ChatExport is the downloadable transcript of a session.
type ChatExport struct {
	Timestamp string          `json:"timestamp"`
	Messages  []ExportMessage `json:"messages"`
}

// Export builds the transcript of turns. User turns contribute their
// first text fragment; analyst turns join every text fragment with a
// space.
func Export(turns []Turn, now time.Time) ChatExport {
	out := ChatExport{
		Timestamp: now.Format(ExportTimeLayout),
		Messages:  make([]ExportMessage, 0, len(turns)),
	}
	for _, t := range turns {
		var text string
		if t.Role == RoleUser {
			for _, f := range t.Content {
				if tf, ok := f.(Text); ok {
					text = tf.Body
					break
				}
			}
		} else {
			text = TextOf(t.Content, " ")
		}
		out.Messages = append(out.Messages, ExportMessage{Role: t.Role, Text: text})
	}
	return out
}

// MarshalExport renders the transcript as indented JSON.
func MarshalExport(turns []Turn, now time.Time) ([]byte, error) {
	return json.MarshalIndent(Export(turns, now), "", "  ")
}

// ExportFilename is the download name for a chat export made at now.
func ExportFilename(now time.Time) string {
	return "cortex_chat_" + now.Format("20060102_150405") + ".json"
}
