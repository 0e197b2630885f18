package model

import "fmt"

// Worksheet sections. Each names the knowledge-base category whose
// statements form the body of the activity.
const (
	SectionPrompting = "Prompting events"
	SectionInterp    = "Interpretations of events"
	SectionBio       = "Biological changes and experiences"
	SectionAct       = "Expressions and actions"
	SectionAfter     = "Aftereffects"
)

// FeatureConfig selects which optional sections a session includes and which
// worksheet section drives the statement pages. Read-only after construction.
type FeatureConfig struct {
	Section            string `json:"section" bson:"section"`
	Study              bool   `json:"study" bson:"study"`
	ConsentDisclosure  bool   `json:"consentDisclosure" bson:"consentDisclosure"`
	MoodInduction      bool   `json:"moodInduction" bson:"moodInduction"`
	SelfReport         bool   `json:"selfReport" bson:"selfReport"`
	PrePostMeasurement bool   `json:"prePostMeasurement" bson:"prePostMeasurement"`
	MoodCheck          bool   `json:"moodCheck" bson:"moodCheck"`
	Feedback           bool   `json:"feedback" bson:"feedback"`
}

var variantSections = map[string]string{
	"prompting": SectionPrompting,
	"interp":    SectionInterp,
	"bio":       SectionBio,
	"act":       SectionAct,
	"after":     SectionAfter,
}

// VariantConfig resolves a study variant slug to the full supervised-study
// configuration for that worksheet section.
func VariantConfig(slug string) (FeatureConfig, error) {
	section, ok := variantSections[slug]
	if !ok {
		return FeatureConfig{}, fmt.Errorf("unknown study variant %q", slug)
	}
	return FeatureConfig{
		Section:            section,
		Study:              true,
		ConsentDisclosure:  true,
		MoodInduction:      true,
		SelfReport:         true,
		PrePostMeasurement: true,
		MoodCheck:          true,
		Feedback:           true,
	}, nil
}

// AppConfig resolves a variant slug to the stand-alone app configuration:
// just the activity body and its summary, no study scaffolding.
func AppConfig(slug string) (FeatureConfig, error) {
	section, ok := variantSections[slug]
	if !ok {
		return FeatureConfig{}, fmt.Errorf("unknown study variant %q", slug)
	}
	return FeatureConfig{Section: section}, nil
}

// VariantSlugs lists the known variant slugs.
func VariantSlugs() []string {
	return []string{"prompting", "interp", "bio", "act", "after"}
}
