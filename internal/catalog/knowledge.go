package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lrperlmu/emotional-clarity-sub000/internal/model"
)

// LoadKnowledgeBase reads the statement knowledge base from a JSON file: an
// array of {Category, Statement, Emotion} objects.
func LoadKnowledgeBase(path string) ([]model.KnowledgeEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge base: %w", err)
	}

	var entries []model.KnowledgeEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse knowledge base: %w", err)
	}

	for i, e := range entries {
		if e.Statement == "" || e.Category == "" {
			return nil, fmt.Errorf("knowledge base entry %d is missing a statement or category", i)
		}
	}
	return entries, nil
}
