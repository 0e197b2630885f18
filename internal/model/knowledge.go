package model

import "strings"

// KnowledgeEntry is one row of the statement knowledge base. The Emotion
// field holds one or more comma-joined emotion labels, matching the way the
// worksheet data is authored.
type KnowledgeEntry struct {
	Category  string `json:"Category"`
	Statement string `json:"Statement"`
	Emotion   string `json:"Emotion"`
}

// Emotions splits the comma-joined emotion labels, trimming whitespace and
// dropping empties.
func (e KnowledgeEntry) Emotions() []string {
	var out []string
	for _, part := range strings.Split(e.Emotion, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
