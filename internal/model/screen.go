package model

// ScreenKind tags a Screen variant. The rendering layer dispatches on it to
// pick a template, and the engine dispatches on it to fire post-navigation
// callbacks. The set is closed; the engine switches over it exhaustively.
type ScreenKind string

const (
	ScreenIntro       ScreenKind = "intro"
	ScreenConsent     ScreenKind = "consent_disclosure"
	ScreenPHQ         ScreenKind = "phq"
	ScreenShortAnswer ScreenKind = "short_answer"
	ScreenLongAnswer  ScreenKind = "long_answer"
	ScreenSelfReport  ScreenKind = "self_report"
	ScreenLikert      ScreenKind = "likert"
	ScreenStatements  ScreenKind = "statements"
	ScreenSummary     ScreenKind = "summary_count"
	ScreenFeedback    ScreenKind = "feedback"
	ScreenBlocker     ScreenKind = "blocker"
	ScreenEnd         ScreenKind = "end"
)

// FormItem is one answerable row on a consent, self-report or feedback
// screen. Kind selects the input widget: "text", "yesno" or "scale".
type FormItem struct {
	Question string      `json:"question"`
	Kind     string      `json:"kind"`
	Response interface{} `json:"response"`
	Fixed    bool        `json:"fixed,omitempty"` // pre-set, not editable
}

// StatementItem is one row of a checklist page.
type StatementItem struct {
	Statement string   `json:"statement"`
	Response  bool     `json:"response"`
	Emotions  []string `json:"emotions"`
}

// ScaleItem is one likert row. Min and Max bound the integer response.
type ScaleItem struct {
	Question string      `json:"question"`
	Min      int         `json:"min"`
	Max      int         `json:"max"`
	Response interface{} `json:"response"`
}

// SummaryGroup is one emotion bucket on the summary screen: the emotion and
// the statements the participant endorsed that carry it.
type SummaryGroup struct {
	Emotion   string   `json:"emotion"`
	Responses []string `json:"responses"`
}

// Screen is one unit of the navigable sequence. It is a tagged variant:
// Kind says which of the content fields are meaningful. Blockers carry no
// content at all and are never shown to the participant.
type Screen struct {
	Kind  ScreenKind `json:"kind"`
	Title string     `json:"title,omitempty"`
	Text  string     `json:"text,omitempty"`

	// Group is the response group every answerable item on this screen
	// registers under.
	Group string `json:"group,omitempty"`

	Question   string          `json:"question,omitempty"`
	Items      []FormItem      `json:"items,omitempty"`
	Statements []StatementItem `json:"statements,omitempty"`
	Scales     []ScaleItem     `json:"scales,omitempty"`
	Qualifiers []string        `json:"qualifiers,omitempty"`

	// Single-prompt answer screens. The prompt is also the record key, so
	// clients submit back exactly the question text they were shown.
	// Response mirrors the store on re-display.
	Prompt    string      `json:"prompt,omitempty"`
	Response  interface{} `json:"response,omitempty"`
	CharLimit int         `json:"charLimit,omitempty"`

	// Timed long-answer screens: forward navigation unlocks (or fires, when
	// AutoAdvance is set) after TimeLimitSec. Enforcement is the renderer's.
	TimeLimitSec int  `json:"timeLimitSec,omitempty"`
	AutoAdvance  bool `json:"autoAdvance,omitempty"`

	Matches []SummaryGroup `json:"matches,omitempty"`

	// FailText is the replacement body text the screening callback installs
	// when the participant does not pass (results and end screens only).
	FailText       string `json:"-"`
	CompletionCode string `json:"completionCode,omitempty"`
}

// IsBlocker reports whether the screen is a navigation checkpoint.
func (s *Screen) IsBlocker() bool {
	return s.Kind == ScreenBlocker
}

func NewBlocker() *Screen {
	return &Screen{Kind: ScreenBlocker}
}

func NewIntroScreen(title, text string) *Screen {
	return &Screen{Kind: ScreenIntro, Title: title, Text: text}
}

func NewConsentScreen(title, text string, items []FormItem) *Screen {
	return &Screen{Kind: ScreenConsent, Title: title, Text: text, Group: GroupConsent, Items: items}
}

func NewPHQScreen(title, question string, scales []ScaleItem, qualifiers []string) *Screen {
	return &Screen{Kind: ScreenPHQ, Title: title, Question: question, Group: GroupPHQ, Scales: scales, Qualifiers: qualifiers}
}

func NewShortAnswerScreen(title, prompt, instruction string, charLimit int) *Screen {
	return &Screen{
		Kind: ScreenShortAnswer, Title: title, Group: GroupInduction,
		Prompt: prompt, Text: instruction, CharLimit: charLimit,
	}
}

func NewLongAnswerScreen(title, prompt string, timeLimitSec int, autoAdvance bool) *Screen {
	return &Screen{
		Kind: ScreenLongAnswer, Title: title, Group: GroupInduction,
		Prompt: prompt, TimeLimitSec: timeLimitSec, AutoAdvance: autoAdvance,
	}
}

func NewSelfReportScreen(title, group string, items []FormItem, qualifiers []string) *Screen {
	return &Screen{Kind: ScreenSelfReport, Title: title, Group: group, Items: items, Qualifiers: qualifiers}
}

func NewLikertScreen(title, question, group string, scales []ScaleItem, qualifiers []string) *Screen {
	return &Screen{Kind: ScreenLikert, Title: title, Question: question, Group: group, Scales: scales, Qualifiers: qualifiers}
}

func NewStatementsScreen(title, question string, statements []StatementItem) *Screen {
	return &Screen{Kind: ScreenStatements, Title: title, Question: question, Group: GroupBody, Statements: statements}
}

func NewSummaryScreen(title, text, followText string) *Screen {
	return &Screen{Kind: ScreenSummary, Title: title, Text: text, Question: followText}
}

func NewFeedbackScreen(title, text string, items []FormItem, qualifiers []string) *Screen {
	return &Screen{Kind: ScreenFeedback, Title: title, Text: text, Group: GroupFeedback, Items: items, Qualifiers: qualifiers}
}

func NewEndScreen(title, text, failText, completionCode string) *Screen {
	return &Screen{Kind: ScreenEnd, Title: title, Text: text, FailText: failText, CompletionCode: completionCode}
}
