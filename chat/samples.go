package chat

import "github.com/DachengChen/paiAnalyst/session"

var samples = map[session.Mode][]string{
	session.ModeStructured: {
		"What are the top 5 companies by deal count?",
		"Show me asset distribution by region",
		"Compare deal values year over year",
		"Which sectors have the highest growth rate?",
	},
	session.ModeUnstructured: {
		"What is the latest update on the integration project?",
		"Summarize the open risks mentioned in the status reports",
		"What is the status of the view consolidation work?",
	},
}

// Samples returns starter questions for a mode.
func Samples(m session.Mode) []string {
	return append([]string(nil), samples[m]...)
}
