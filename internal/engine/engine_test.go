package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lrperlmu/emotional-clarity-sub000/internal/catalog"
	"github.com/lrperlmu/emotional-clarity-sub000/internal/model"
)

// recordingGateway captures every persistence call for inspection.
type recordingGateway struct {
	answers [][]*model.AnswerRecord
	events  []string
	codes   []string
}

func (g *recordingGateway) RecordAnswers(records []*model.AnswerRecord) {
	g.answers = append(g.answers, records)
}

func (g *recordingGateway) RecordEvent(name string) {
	g.events = append(g.events, name)
}

func (g *recordingGateway) RecordCompletionCode(code string) {
	g.codes = append(g.codes, code)
}

func introSequence(titles ...string) []*model.Screen {
	var screens []*model.Screen
	for _, title := range titles {
		if title == "|" {
			screens = append(screens, model.NewBlocker())
			continue
		}
		screens = append(screens, model.NewIntroScreen(title, "text"))
	}
	screens = append(screens, model.NewEndScreen("All done", "bye", "", "EC-TEST1234"))
	return screens
}

// statementsFixture builds a checklist page, its summary, and the records
// behind the page.
func statementsFixture(t *testing.T) (*Engine, *model.AnswerStore) {
	t.Helper()

	store := model.NewAnswerStore()
	rows := []struct {
		statement string
		emotions  []string
	}{
		{"s1", []string{"anger"}},
		{"s2", []string{"anger", "sadness"}},
		{"s3", []string{"sadness"}},
		{"s4", []string{"fear"}},
	}
	items := make([]model.StatementItem, 0, len(rows))
	for _, row := range rows {
		require.NoError(t, store.Add(&model.AnswerRecord{
			Question: row.statement,
			Response: false,
			Emotions: row.emotions,
			Group:    model.GroupBody,
		}))
		items = append(items, model.StatementItem{Statement: row.statement, Emotions: row.emotions})
	}

	screens := []*model.Screen{
		model.NewStatementsScreen("Checklist", "Which apply?", items),
		model.NewSummaryScreen("Summary", "Your input suggests:", "Thanks"),
		model.NewEndScreen("All done", "bye", "", "EC-TEST1234"),
	}
	eng := New(screens, store, nil)
	eng.Advance()
	return eng, store
}

func TestEngine_StartsBeforeFirstScreen(t *testing.T) {
	eng := New(introSequence("a", "b"), model.NewAnswerStore(), nil)

	assert.Equal(t, -1, eng.Position())
	assert.True(t, eng.HasNext())
	assert.False(t, eng.HasPrev())
	assert.Panics(t, func() { eng.Current() })

	first := eng.Advance()
	assert.Equal(t, "a", first.Title)
	assert.Equal(t, 0, eng.Position())
	assert.False(t, eng.HasPrev())
}

func TestEngine_AdvanceSkipsBlockerRuns(t *testing.T) {
	eng := New(introSequence("a", "|", "|", "b"), model.NewAnswerStore(), nil)

	eng.Advance()
	second := eng.Advance()

	assert.Equal(t, "b", second.Title)
	assert.Equal(t, 3, eng.Position(), "both blockers crossed in one step")
	assert.False(t, second.IsBlocker())
}

func TestEngine_RetreatMovesExactlyOne(t *testing.T) {
	eng := New(introSequence("a", "b", "c"), model.NewAnswerStore(), nil)

	eng.Advance()
	eng.Advance()
	eng.Advance()
	assert.Equal(t, "c", eng.Current().Title)

	assert.Equal(t, "b", eng.Retreat().Title)
	assert.Equal(t, "a", eng.Retreat().Title)
	assert.False(t, eng.HasPrev())
}

func TestEngine_BlockerForeclosesRetreat(t *testing.T) {
	eng := New(introSequence("a", "|", "b"), model.NewAnswerStore(), nil)

	eng.Advance()
	assert.False(t, eng.IsNextReversible())
	eng.Advance()

	assert.Equal(t, "b", eng.Current().Title)
	assert.False(t, eng.HasPrev())
	assert.Panics(t, func() { eng.Retreat() })
}

func TestEngine_IsNextReversible(t *testing.T) {
	eng := New(introSequence("a", "b", "|", "c"), model.NewAnswerStore(), nil)

	eng.Advance()
	assert.True(t, eng.IsNextReversible())
	eng.Advance()
	assert.False(t, eng.IsNextReversible(), "next step crosses a blocker")
}

func TestEngine_AdvancePastEndPanics(t *testing.T) {
	eng := New(introSequence("a"), model.NewAnswerStore(), nil)

	eng.Advance()
	eng.Advance()

	assert.True(t, eng.Done())
	assert.False(t, eng.HasNext())
	assert.Panics(t, func() { eng.Advance() })
}

func TestEngine_RoundTripKeepsResponses(t *testing.T) {
	eng, _ := statementsFixture(t)

	require.NoError(t, eng.Update([]AnswerInput{
		{Question: "s1", Group: model.GroupBody, Response: true},
	}))

	eng.Advance() // summary
	back := eng.Retreat()

	require.Equal(t, model.ScreenStatements, back.Kind)
	assert.True(t, back.Statements[0].Response, "s1 re-displays as checked")
	assert.False(t, back.Statements[1].Response)
}

func TestEngine_UpdateUnknownRecordRejected(t *testing.T) {
	eng, store := statementsFixture(t)

	err := eng.Update([]AnswerInput{
		{Question: "never registered", Group: model.GroupBody, Response: true},
	})
	assert.ErrorIs(t, err, model.ErrRecordNotFound)

	// A valid input ahead of the bad one must not slip through either:
	// the batch is rejected as a whole.
	err = eng.Update([]AnswerInput{
		{Question: "s1", Group: model.GroupBody, Response: true},
		{Question: "never registered", Group: model.GroupBody, Response: true},
	})
	assert.ErrorIs(t, err, model.ErrRecordNotFound)

	for _, rec := range store.All() {
		assert.False(t, rec.BoolResponse(), "rejected update must not change %q", rec.Question)
	}
}

func TestEngine_UpdateAcceptsDisplayedPrompt(t *testing.T) {
	eng, _ := buildStudy(t, nil)
	for eng.Current().Kind != model.ScreenLongAnswer {
		require.True(t, eng.HasNext(), "ran out of screens before the writing exercise")
		eng.Advance()
	}

	// The prompt shown to the participant is the record key, so submitting
	// it back verbatim must land.
	screen := eng.Current()
	require.NoError(t, eng.Update([]AnswerInput{
		{Question: screen.Prompt, Group: screen.Group, Response: "I missed the bus and my interview."},
	}))

	back := eng.Retreat()
	require.Equal(t, model.ScreenShortAnswer, back.Kind)
	again := eng.Advance()
	require.Equal(t, model.ScreenLongAnswer, again.Kind)
	assert.Equal(t, "I missed the bus and my interview.", again.Response)
}

func TestEngine_UpdateForwardsChangedRecords(t *testing.T) {
	gw := &recordingGateway{}
	store := model.NewAnswerStore()
	require.NoError(t, store.Add(&model.AnswerRecord{Question: "s1", Response: false, Group: model.GroupBody}))

	screens := []*model.Screen{
		model.NewStatementsScreen("Checklist", "q", []model.StatementItem{{Statement: "s1"}}),
		model.NewEndScreen("All done", "bye", "", ""),
	}
	eng := New(screens, store, gw)
	eng.Advance()

	require.NoError(t, eng.Update([]AnswerInput{
		{Question: "s1", Group: model.GroupBody, Response: true},
	}))

	require.Len(t, gw.answers, 1)
	require.Len(t, gw.answers[0], 1)
	assert.Equal(t, "s1", gw.answers[0][0].Question)
	assert.Equal(t, true, gw.answers[0][0].Response)

	// An empty update changes nothing and records nothing.
	require.NoError(t, eng.Update(nil))
	assert.Len(t, gw.answers, 1)
}

func TestEngine_SummaryGroupsByEmotion(t *testing.T) {
	eng, _ := statementsFixture(t)

	require.NoError(t, eng.Update([]AnswerInput{
		{Question: "s1", Group: model.GroupBody, Response: true},
		{Question: "s2", Group: model.GroupBody, Response: true},
		{Question: "s3", Group: model.GroupBody, Response: true},
	}))

	summary := eng.Advance()
	require.Equal(t, model.ScreenSummary, summary.Kind)
	require.Len(t, summary.Matches, 2, "fear has no true responses")

	// Equal sizes keep first-encounter order: anger before sadness.
	assert.Equal(t, "anger", summary.Matches[0].Emotion)
	assert.Equal(t, []string{"s1", "s2"}, summary.Matches[0].Responses)
	assert.Equal(t, "sadness", summary.Matches[1].Emotion)
	assert.Equal(t, []string{"s2", "s3"}, summary.Matches[1].Responses)
}

func TestEngine_SummaryOrdersLargestFirst(t *testing.T) {
	eng, _ := statementsFixture(t)

	require.NoError(t, eng.Update([]AnswerInput{
		{Question: "s2", Group: model.GroupBody, Response: true},
		{Question: "s3", Group: model.GroupBody, Response: true},
		{Question: "s4", Group: model.GroupBody, Response: true},
	}))

	summary := eng.Advance()
	require.Len(t, summary.Matches, 3)
	assert.Equal(t, "sadness", summary.Matches[0].Emotion, "two sadness responses outrank one each")
	assert.Len(t, summary.Matches[0].Responses, 2)
}

func TestEngine_SummaryRecomputeIsIdempotent(t *testing.T) {
	eng, _ := statementsFixture(t)

	inputs := []AnswerInput{
		{Question: "s1", Group: model.GroupBody, Response: true},
		{Question: "s4", Group: model.GroupBody, Response: true},
	}
	require.NoError(t, eng.Update(inputs))
	first := eng.Advance().Matches

	eng.Retreat()
	require.NoError(t, eng.Update(inputs))
	second := eng.Advance().Matches

	assert.Equal(t, first, second)
}

func TestEngine_SummaryFullyReplacedOnUncheck(t *testing.T) {
	eng, _ := statementsFixture(t)

	require.NoError(t, eng.Update([]AnswerInput{
		{Question: "s2", Group: model.GroupBody, Response: true},
	}))
	summary := eng.Advance()
	require.Len(t, summary.Matches, 2)

	eng.Retreat()
	require.NoError(t, eng.Update([]AnswerInput{
		{Question: "s2", Group: model.GroupBody, Response: false},
	}))
	summary = eng.Advance()
	assert.Empty(t, summary.Matches)
}

func TestEngine_GatewayEventsAndCompletionCode(t *testing.T) {
	gw := &recordingGateway{}
	eng := New(introSequence("a", "b"), model.NewAnswerStore(), gw)

	eng.Advance()
	assert.Empty(t, gw.events, "landing on the first screen leaves nothing")

	eng.Advance()
	eng.Retreat()
	eng.Advance()
	eng.Advance() // end screen

	assert.Equal(t, []string{"leave_intro", "return_to_intro", "leave_intro", "leave_intro"}, gw.events)
	assert.Equal(t, []string{"EC-TEST1234"}, gw.codes)
}

func walkToPHQ(t *testing.T, eng *Engine) {
	t.Helper()
	for eng.Current().Kind != model.ScreenPHQ {
		require.True(t, eng.HasNext(), "ran out of screens before the health questionnaire")
		eng.Advance()
	}
}

func buildStudy(t *testing.T, gw Gateway) (*Engine, *model.AnswerStore) {
	t.Helper()

	cfg, err := model.VariantConfig("prompting")
	require.NoError(t, err)
	kb := []model.KnowledgeEntry{
		{Category: model.SectionPrompting, Statement: "Having an important goal blocked.", Emotion: "anger"},
		{Category: model.SectionPrompting, Statement: "The death of someone you love.", Emotion: "sadness"},
		{Category: model.SectionPrompting, Statement: "Being alone in the dark.", Emotion: "fear"},
	}
	b := &catalog.Builder{Config: cfg, KB: kb, Key: catalog.Key(0)}
	screens, store, err := b.Build()
	require.NoError(t, err)

	eng := New(screens, store, gw)
	eng.Advance()
	return eng, store
}

func phqInputs(store *model.AnswerStore, value int) []AnswerInput {
	var inputs []AnswerInput
	for _, rec := range store.ByGroup(model.GroupPHQ) {
		inputs = append(inputs, AnswerInput{Question: rec.Question, Group: model.GroupPHQ, Response: value})
	}
	return inputs
}

func TestEngine_ScreeningBelowCutoffContinues(t *testing.T) {
	eng, store := buildStudy(t, nil)
	walkToPHQ(t, eng)
	total := eng.Len()

	require.NoError(t, eng.Update(phqInputs(store, 1))) // 9 points, below cutoff

	results := eng.Advance()
	assert.Equal(t, model.ScreenIntro, results.Kind)
	assert.False(t, eng.ScreenedOut())
	assert.Equal(t, total, eng.Len(), "nothing spliced out")
}

func TestEngine_ScreeningAtCutoffEndsSession(t *testing.T) {
	gw := &recordingGateway{}
	eng, store := buildStudy(t, gw)
	walkToPHQ(t, eng)
	total := eng.Len()

	require.NoError(t, eng.Update(phqInputs(store, 3))) // 27 points, well over

	results := eng.Advance()
	assert.Equal(t, model.ScreenIntro, results.Kind)
	assert.True(t, eng.ScreenedOut())
	assert.Less(t, eng.Len(), total, "everything between results and end spliced out")
	assert.Contains(t, gw.events, "screened_out")

	// The only remaining step is the end screen, without a completion code.
	require.True(t, eng.HasNext())
	end := eng.Advance()
	assert.Equal(t, model.ScreenEnd, end.Kind)
	assert.Empty(t, end.CompletionCode)
	assert.True(t, eng.Done())
	assert.Empty(t, gw.codes, "no completion code recorded for a screened-out session")
}

func TestEngine_ScreeningSpliceIsOneWay(t *testing.T) {
	eng, store := buildStudy(t, nil)
	walkToPHQ(t, eng)

	require.NoError(t, eng.Update(phqInputs(store, 3)))
	eng.Advance()
	pruned := eng.Len()

	// Going back to the questionnaire and lowering the score does not
	// restore the spliced screens.
	eng.Retreat()
	require.NoError(t, eng.Update(phqInputs(store, 0)))
	eng.Advance()

	assert.Equal(t, pruned, eng.Len())
	assert.True(t, eng.ScreenedOut())
	assert.Equal(t, model.ScreenEnd, eng.Advance().Kind)
}

func TestEngine_FullWalkthrough(t *testing.T) {
	gw := &recordingGateway{}
	eng, store := buildStudy(t, gw)

	steps := 0
	for !eng.Done() {
		if eng.Current().Kind == model.ScreenPHQ {
			require.NoError(t, eng.Update(phqInputs(store, 0)))
		}
		eng.Advance()
		steps++
		require.Less(t, steps, 100, "walkthrough must terminate")
	}

	end := eng.Current()
	assert.Equal(t, model.ScreenEnd, end.Kind)
	assert.NotEmpty(t, end.CompletionCode)
	require.Len(t, gw.codes, 1)
	assert.Equal(t, end.CompletionCode, gw.codes[0])
	assert.False(t, eng.ScreenedOut())
}

func TestEngine_CustomOnLeaveCallback(t *testing.T) {
	eng := New(introSequence("a", "b"), model.NewAnswerStore(), nil)

	var left []string
	eng.OnLeave(model.ScreenIntro, func(e *Engine, leaving *model.Screen) {
		left = append(left, leaving.Title)
	})

	eng.Advance()
	eng.Advance()
	eng.Advance()

	assert.Equal(t, []string{"a", "b"}, left)
}
