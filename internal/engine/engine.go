package engine

import (
	"fmt"
	"sort"

	"github.com/lrperlmu/emotional-clarity-sub000/internal/model"
)

// PHQCutoff is the screening score at or above which the participant does
// not continue past the results screen.
const PHQCutoff = 10

// Gateway is the persistence collaborator. Calls are fire and forget: the
// engine never blocks on them and never sees their failures, so a broken
// gateway cannot stop navigation.
type Gateway interface {
	RecordAnswers(records []*model.AnswerRecord)
	RecordEvent(name string)
	RecordCompletionCode(code string)
}

// NopGateway discards every persistence call.
type NopGateway struct{}

func (NopGateway) RecordAnswers([]*model.AnswerRecord) {}
func (NopGateway) RecordEvent(string)                  {}
func (NopGateway) RecordCompletionCode(string)         {}

// Callback runs when the participant leaves a screen of the registered kind
// via Advance, before the position moves. The leaving screen is passed in.
type Callback func(e *Engine, leaving *model.Screen)

// AnswerInput is one (question, group, response) triple collected from the
// screen the participant is leaving.
type AnswerInput struct {
	Question string      `json:"question"`
	Group    string      `json:"group"`
	Response interface{} `json:"response"`
}

// Engine owns the screen sequence, the current position, and the answer
// store for one session. It is the sole mutator of the store. One session is
// one participant clicking through screens, so there is no locking here;
// callers serialize access.
type Engine struct {
	screens     []*model.Screen
	store       *model.AnswerStore
	gateway     Gateway
	pos         int
	callbacks   map[model.ScreenKind]Callback
	screenedOut bool
}

// New wraps a built screen sequence. The position starts before the first
// screen; call Advance once to land on it. A nil gateway discards
// persistence calls.
func New(screens []*model.Screen, store *model.AnswerStore, gateway Gateway) *Engine {
	if gateway == nil {
		gateway = NopGateway{}
	}
	e := &Engine{
		screens:   screens,
		store:     store,
		gateway:   gateway,
		pos:       -1,
		callbacks: make(map[model.ScreenKind]Callback),
	}
	e.callbacks[model.ScreenPHQ] = screenPHQ
	return e
}

// OnLeave registers a callback fired when leaving a screen of the given
// kind via Advance.
func (e *Engine) OnLeave(kind model.ScreenKind, cb Callback) {
	e.callbacks[kind] = cb
}

// HasNext reports whether Advance is legal.
func (e *Engine) HasNext() bool {
	return e.pos < len(e.screens)-1
}

// HasPrev reports whether Retreat is legal. Crossing a blocker forward
// permanently forecloses going back across it.
func (e *Engine) HasPrev() bool {
	return e.pos >= 1 && !e.screens[e.pos-1].IsBlocker()
}

// IsNextReversible reports whether the participant will be able to come
// back after the next Advance.
func (e *Engine) IsNextReversible() bool {
	return e.HasNext() && !e.screens[e.pos+1].IsBlocker()
}

// Done reports whether the participant has reached the end screen.
func (e *Engine) Done() bool {
	return !e.HasNext()
}

// ScreenedOut reports whether the screening callback cut the session short.
func (e *Engine) ScreenedOut() bool {
	return e.screenedOut
}

// Position returns the current index into the sequence.
func (e *Engine) Position() int {
	return e.pos
}

// Len returns the current sequence length.
func (e *Engine) Len() int {
	return len(e.screens)
}

// Current returns the current screen, re-hydrated from the store.
func (e *Engine) Current() *model.Screen {
	if e.pos < 0 {
		panic("engine: Current called before the first Advance")
	}
	cur := e.screens[e.pos]
	e.hydrate(cur)
	return cur
}

// Advance fires the leaving screen's kind callback, moves forward, and
// skips any run of blockers so the landed screen is always visible. Calling
// it when HasNext is false is a caller bug and panics.
func (e *Engine) Advance() *model.Screen {
	if !e.HasNext() {
		panic("engine: Advance called with no next screen")
	}

	if e.pos >= 0 {
		leaving := e.screens[e.pos]
		if cb, ok := e.callbacks[leaving.Kind]; ok {
			cb(e, leaving)
		}
		e.gateway.RecordEvent("leave_" + string(leaving.Kind))
	}

	e.pos++
	for e.screens[e.pos].IsBlocker() {
		e.pos++
	}

	cur := e.screens[e.pos]
	e.hydrate(cur)
	if cur.Kind == model.ScreenEnd && cur.CompletionCode != "" {
		e.gateway.RecordCompletionCode(cur.CompletionCode)
	}
	return cur
}

// Retreat moves back exactly one screen. Calling it when HasPrev is false
// is a caller bug and panics.
func (e *Engine) Retreat() *model.Screen {
	if !e.HasPrev() {
		panic("engine: Retreat called with no previous screen")
	}
	e.pos--
	cur := e.screens[e.pos]
	e.hydrate(cur)
	e.gateway.RecordEvent("return_to_" + string(cur.Kind))
	return cur
}

// Update absorbs the answers collected from the current screen: each
// (question, group) must already have a record or the whole update is
// rejected with model.ErrRecordNotFound and no record is touched. On
// success the summary screen is recomputed and the changed records go to
// the gateway.
func (e *Engine) Update(inputs []AnswerInput) error {
	changed := make([]*model.AnswerRecord, len(inputs))
	for i, in := range inputs {
		rec, err := e.store.Lookup(in.Question, in.Group)
		if err != nil {
			return err
		}
		changed[i] = rec
	}
	for i, in := range inputs {
		changed[i].Response = in.Response
	}

	e.recomputeSummary()

	if len(changed) > 0 {
		e.gateway.RecordAnswers(changed)
	}
	return nil
}

// recomputeSummary rebuilds the summary screen's emotion groups from every
// true response in the store. Groups keep first-encounter order among equal
// sizes and are otherwise sorted largest first. The previous content is
// fully replaced, so recomputing is idempotent.
func (e *Engine) recomputeSummary() {
	var summary *model.Screen
	for _, s := range e.screens {
		if s.Kind == model.ScreenSummary {
			summary = s
			break
		}
	}
	if summary == nil {
		return
	}

	var order []string
	buckets := make(map[string][]string)
	for _, rec := range e.store.All() {
		if !rec.BoolResponse() {
			continue
		}
		for _, emotion := range rec.Emotions {
			if _, ok := buckets[emotion]; !ok {
				order = append(order, emotion)
			}
			buckets[emotion] = append(buckets[emotion], rec.Question)
		}
	}

	groups := make([]model.SummaryGroup, 0, len(order))
	for _, emotion := range order {
		groups = append(groups, model.SummaryGroup{Emotion: emotion, Responses: buckets[emotion]})
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return len(groups[i].Responses) > len(groups[j].Responses)
	})
	summary.Matches = groups
}

// screenPHQ is the built-in screening callback, fired on leaving the PHQ
// screen. At or above the cutoff it rewrites the following results screen
// to its fail variant, switches the end screen to the did-not-pass variant,
// and splices out everything in between. The splice is one-way.
func screenPHQ(e *Engine, leaving *model.Screen) {
	total := 0
	for _, rec := range e.store.ByGroup(model.GroupPHQ) {
		total += rec.IntResponse()
	}
	if total < PHQCutoff {
		return
	}

	results := e.screens[e.pos+1]
	if results.FailText != "" {
		results.Text = results.FailText
	}

	end := e.screens[len(e.screens)-1]
	if end.FailText != "" {
		end.Text = end.FailText
	}
	end.CompletionCode = ""

	e.splice(e.pos+2, len(e.screens)-1)
	e.screenedOut = true
	e.gateway.RecordEvent("screened_out")
}

// splice replaces the sub-range [a, b) of the sequence with an empty range.
func (e *Engine) splice(a, b int) {
	if a >= b {
		return
	}
	e.screens = append(e.screens[:a], e.screens[b:]...)
}

// hydrate overwrites a screen's displayed responses with the store's
// current values, so going back re-displays what the participant entered.
func (e *Engine) hydrate(s *model.Screen) {
	switch s.Kind {
	case model.ScreenStatements:
		for i := range s.Statements {
			s.Statements[i].Response = e.mustLookup(s.Statements[i].Statement, s.Group).BoolResponse()
		}
	case model.ScreenLikert, model.ScreenPHQ:
		for i := range s.Scales {
			s.Scales[i].Response = e.mustLookup(s.Scales[i].Question, s.Group).Response
		}
	case model.ScreenConsent, model.ScreenSelfReport, model.ScreenFeedback:
		for i := range s.Items {
			s.Items[i].Response = e.mustLookup(s.Items[i].Question, s.Group).Response
		}
	case model.ScreenShortAnswer, model.ScreenLongAnswer:
		s.Response = e.mustLookup(s.Prompt, s.Group).Response
	case model.ScreenIntro, model.ScreenSummary, model.ScreenEnd, model.ScreenBlocker:
		// nothing answerable
	}
}

// mustLookup panics on a missing record: a screen item without a record
// means the catalog and the store disagree, which is a construction bug.
func (e *Engine) mustLookup(question, group string) *model.AnswerRecord {
	rec, err := e.store.Lookup(question, group)
	if err != nil {
		panic(fmt.Sprintf("engine: screen item has no answer record: %v", err))
	}
	return rec
}
