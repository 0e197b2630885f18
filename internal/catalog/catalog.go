package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/lrperlmu/emotional-clarity-sub000/internal/model"
)

// KeyProvider supplies the participant key used to order the feedback
// platform pages. Implementations must return promptly; a provider that
// cannot resolve the real key yet returns 0.
type KeyProvider interface {
	ParticipantKey() int
}

// Key is a fixed KeyProvider.
type Key int

// ParticipantKey returns the fixed key.
func (k Key) ParticipantKey() int { return int(k) }

// Builder assembles the ordered screen sequence and its AnswerStore for one
// session from a FeatureConfig and the statement knowledge base.
type Builder struct {
	Config  model.FeatureConfig
	KB      []model.KnowledgeEntry
	Key     KeyProvider
	PerPage int // statements per checklist page, DefaultStatementsPerPage when 0
}

// sequence accumulates screens and answer records during a build. The first
// registration failure sticks and aborts the build.
type sequence struct {
	screens []*model.Screen
	store   *model.AnswerStore
	err     error
}

func (q *sequence) push(s *model.Screen) {
	q.screens = append(q.screens, s)
}

func (q *sequence) register(rec *model.AnswerRecord) {
	if q.err != nil {
		return
	}
	if err := q.store.Add(rec); err != nil {
		q.err = err
	}
}

// Build assembles the screen sequence. The sequence always ends with exactly
// one end screen; every answerable item gets an AnswerRecord with its
// screen's group before the participant ever sees it.
func (b *Builder) Build() ([]*model.Screen, *model.AnswerStore, error) {
	cfg := b.Config
	per := b.PerPage
	if per <= 0 {
		per = DefaultStatementsPerPage
	}

	q := &sequence{store: model.NewAnswerStore()}

	if cfg.Study {
		q.push(model.NewIntroScreen(studyIntroTitle, studyIntroText))
		q.push(model.NewIntroScreen(browserCheckTitle, browserCheckText))
		q.push(model.NewBlocker())
	}
	if cfg.ConsentDisclosure {
		b.buildConsent(q)
		q.push(model.NewBlocker())
	}
	if cfg.Study {
		b.buildPHQ(q)
		q.push(model.NewBlocker())
	}
	if cfg.MoodInduction {
		b.buildInduction(q)
		q.push(model.NewBlocker())
	}
	if cfg.SelfReport || cfg.PrePostMeasurement {
		b.buildMeasures(q, model.GroupPre)
		q.push(model.NewBlocker())
	}

	q.push(model.NewIntroScreen(introTitle(cfg.Section), introText))
	b.buildBody(q, per)
	q.push(model.NewSummaryScreen(summaryTitle, summaryText, summaryFollowText))
	q.push(model.NewBlocker())

	if cfg.SelfReport || cfg.PrePostMeasurement {
		b.buildMeasures(q, model.GroupPost)
		q.push(model.NewBlocker())
	}
	if cfg.MoodCheck {
		b.buildMoodCheck(q)
		q.push(model.NewBlocker())
	}
	if cfg.Feedback {
		b.buildFeedback(q)
	}

	q.push(model.NewEndScreen(endTitle, endPassText, endFailText, NewCompletionCode()))

	if q.err != nil {
		return nil, nil, q.err
	}
	return q.screens, q.store, nil
}

func (b *Builder) buildConsent(q *sequence) {
	items := make([]model.FormItem, len(consentStatements))
	copy(items, consentStatements)
	for i := range items {
		if items[i].Response == nil {
			items[i].Response = false
		}
		q.register(&model.AnswerRecord{
			Question: items[i].Question,
			Response: items[i].Response,
			Group:    model.GroupConsent,
		})
	}
	q.push(model.NewConsentScreen(consentTitle, consentInstructions, items))
}

func (b *Builder) buildPHQ(q *sequence) {
	scales := make([]model.ScaleItem, len(phqItems))
	for i, item := range phqItems {
		scales[i] = model.ScaleItem{Question: item, Min: 0, Max: 3}
		q.register(&model.AnswerRecord{Question: item, Group: model.GroupPHQ})
	}
	q.push(model.NewPHQScreen(phqTitle, phqQuestion, scales, phqQualifiers))

	results := model.NewIntroScreen(phqResultsTitle, phqResultsPassText)
	results.FailText = phqResultsFailText
	q.push(results)
}

func (b *Builder) buildInduction(q *sequence) {
	q.push(model.NewShortAnswerScreen(
		inductionShortTitle, inductionShortPrompt,
		inductionShortInstruction, shortAnswerCharLimit))
	q.register(&model.AnswerRecord{Question: inductionShortPrompt, Response: "", Group: model.GroupInduction})

	q.push(model.NewLongAnswerScreen(
		inductionLongTitle, inductionLongPrompt,
		inductionTimeLimitSec, false))
	q.register(&model.AnswerRecord{Question: inductionLongPrompt, Response: "", Group: model.GroupInduction})
}

// buildMeasures emits the self-report and emotion-intensity screens under
// the given response group, so the same questions coexist pre and post.
func (b *Builder) buildMeasures(q *sequence, group string) {
	title := "Before the activity"
	if group == model.GroupPost {
		title = "After the activity"
	}

	if b.Config.SelfReport {
		items := []model.FormItem{
			{Question: selfReportTextQuestion, Kind: "text", Response: ""},
			{Question: selfReportScaleQuestion, Kind: "scale"},
		}
		for _, item := range items {
			q.register(&model.AnswerRecord{Question: item.Question, Response: item.Response, Group: group})
		}
		q.push(model.NewSelfReportScreen(title, group, items, confidenceQualifiers))
	}

	if b.Config.PrePostMeasurement {
		scales := make([]model.ScaleItem, len(likertEmotions))
		for i, emotion := range likertEmotions {
			scales[i] = model.ScaleItem{Question: emotion, Min: 1, Max: 5}
			q.register(&model.AnswerRecord{Question: emotion, Group: group})
		}
		q.push(model.NewLikertScreen(likertTitle, likertQuestion, group, scales, intensityQualifiers))
	}
}

// buildBody filters the knowledge base to the configured section, merges
// duplicate statements, and emits the paginated checklist screens.
func (b *Builder) buildBody(q *sequence, per int) {
	var entries []model.KnowledgeEntry
	for _, e := range b.KB {
		if e.Category == b.Config.Section {
			entries = append(entries, e)
		}
	}

	merged := MergeStatements(entries)
	for _, m := range merged {
		q.register(&model.AnswerRecord{
			Question: m.Statement,
			Response: false,
			Emotions: m.Emotions,
			Group:    model.GroupBody,
		})
	}

	question := bodyQuestion(b.Config.Section)
	start := 0
	for _, size := range PageSizes(len(merged), per) {
		items := make([]model.StatementItem, 0, size)
		for _, m := range merged[start : start+size] {
			items = append(items, model.StatementItem{Statement: m.Statement, Emotions: m.Emotions})
		}
		q.push(model.NewStatementsScreen(introTitle(b.Config.Section), question, items))
		start += size
	}
}

func (b *Builder) buildMoodCheck(q *sequence) {
	scales := []model.ScaleItem{{Question: moodCheckQuestion, Min: 1, Max: 5}}
	q.register(&model.AnswerRecord{Question: moodCheckQuestion, Group: model.GroupMoodCheck})
	q.push(model.NewLikertScreen(moodCheckTitle, moodCheckQuestion, model.GroupMoodCheck, scales, moodQualifiers))
}

// buildFeedback emits the overall feedback page plus the three platform
// comparison pages, ordered by the participant key.
func (b *Builder) buildFeedback(q *sequence) {
	overall := []model.FormItem{
		{Question: "What did you like about this activity?", Kind: "text", Response: ""},
		{Question: "What would you change about this activity?", Kind: "text", Response: ""},
		{Question: "How likely would you be to do an activity like this again?", Kind: "scale"},
	}
	for _, item := range overall {
		q.register(&model.AnswerRecord{Question: item.Question, Response: item.Response, Group: model.GroupFeedback})
	}
	q.push(model.NewFeedbackScreen(feedbackTitle, feedbackText, overall, likelihoodQualifiers))

	key := 0
	if b.Key != nil {
		key = b.Key.ParticipantKey()
	}
	for _, platform := range Shuffle3(key, feedbackPlatforms) {
		items := []model.FormItem{
			{Question: fmt.Sprintf("How likely would you be to do this activity using %s?", platform), Kind: "scale"},
			{Question: fmt.Sprintf("What would be good or bad about using %s?", platform), Kind: "text", Response: ""},
		}
		for _, item := range items {
			q.register(&model.AnswerRecord{Question: item.Question, Response: item.Response, Group: model.GroupFeedback})
		}
		q.push(model.NewFeedbackScreen(feedbackTitle, platformCompareText, items, likelihoodQualifiers))
	}
}

// MergedStatement is one deduplicated knowledge-base statement with the
// union of the emotions it was tagged with.
type MergedStatement struct {
	Statement string
	Emotions  []string
}

// MergeStatements sorts entries by statement text, merges runs with
// identical text into one statement carrying the emotion union in encounter
// order, then stably re-sorts by first emotion so like-emotion statements
// cluster.
func MergeStatements(entries []model.KnowledgeEntry) []MergedStatement {
	sorted := make([]model.KnowledgeEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Statement < sorted[j].Statement
	})

	var merged []MergedStatement
	for _, e := range sorted {
		if n := len(merged); n > 0 && merged[n-1].Statement == e.Statement {
			last := &merged[n-1]
			for _, em := range e.Emotions() {
				if !containsString(last.Emotions, em) {
					last.Emotions = append(last.Emotions, em)
				}
			}
			continue
		}
		merged = append(merged, MergedStatement{Statement: e.Statement, Emotions: e.Emotions()})
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return firstEmotion(merged[i]) < firstEmotion(merged[j])
	})
	return merged
}

// PageSizes splits n items into pages of at most per items. When the split
// would leave a lone item on the last page and the page size allows it, one
// item moves down from the penultimate page.
func PageSizes(n, per int) []int {
	if n <= 0 {
		return nil
	}
	if per < 1 {
		per = 1
	}

	var sizes []int
	for rem := n; rem > 0; rem -= min(rem, per) {
		sizes = append(sizes, min(rem, per))
	}

	if len(sizes) > 1 && per >= 3 && sizes[len(sizes)-1] == 1 {
		sizes[len(sizes)-2]--
		sizes[len(sizes)-1] = 2
	}
	return sizes
}

// NewCompletionCode generates a fresh participant completion code.
func NewCompletionCode() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "EC-" + strings.ToUpper(raw[:8])
}

func firstEmotion(m MergedStatement) string {
	if len(m.Emotions) == 0 {
		return ""
	}
	return m.Emotions[0]
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
