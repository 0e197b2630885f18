package main

import (
	"fmt"
	"log"
	"os"

	"github.com/lrperlmu/emotional-clarity-sub000/internal/catalog"
	"github.com/lrperlmu/emotional-clarity-sub000/internal/model"
)

// kbcheck loads a knowledge base file and reports, per study variant, how
// many raw entries, merged statements and checklist pages it produces.
func main() {
	path := os.Getenv("KNOWLEDGE_PATH")
	if path == "" {
		path = "data/knowledgebase.json"
	}
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	kb, err := catalog.LoadKnowledgeBase(path)
	if err != nil {
		log.Fatalf("Failed to load knowledge base: %v", err)
	}
	fmt.Printf("%s: %d entries\n\n", path, len(kb))

	for _, slug := range model.VariantSlugs() {
		cfg, err := model.VariantConfig(slug)
		if err != nil {
			log.Fatalf("Variant %s: %v", slug, err)
		}

		var entries []model.KnowledgeEntry
		for _, e := range kb {
			if e.Category == cfg.Section {
				entries = append(entries, e)
			}
		}

		merged := catalog.MergeStatements(entries)
		pages := catalog.PageSizes(len(merged), catalog.DefaultStatementsPerPage)

		fmt.Printf("%-10s %-28s entries=%-3d merged=%-3d pages=%v\n",
			slug, cfg.Section, len(entries), len(merged), pages)
		if len(entries) == 0 {
			fmt.Printf("%-10s WARNING: no entries for this section\n", slug)
		}
	}
}
