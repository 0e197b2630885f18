package catalog

import "github.com/lrperlmu/emotional-clarity-sub000/internal/model"

// Strings and fixed content for the study screens. Kept in one place so the
// builder functions stay readable.

const (
	DefaultStatementsPerPage = 12

	shortAnswerCharLimit  = 200
	inductionTimeLimitSec = 300
)

const (
	studyIntroTitle = "Welcome"
	studyIntroText  = "Thank you for participating in this study. You will answer some questions, " +
		"do a short writing exercise, and complete a reflection activity. Tap NEXT to begin."

	browserCheckTitle = "Before you start"
	browserCheckText  = "This study works best in an up-to-date desktop browser with a stable " +
		"internet connection. Please stay on this tab until you reach the completion code."

	introText = "Please answer some questions. Tap NEXT to begin"

	consentTitle        = "Consent"
	consentInstructions = "Please read the consent disclosure form, then check each box to confirm."

	phqTitle    = "Health questionnaire"
	phqQuestion = "Over the last 2 weeks, how often have you been bothered by any of the following problems?"

	phqResultsTitle    = "Questionnaire results"
	phqResultsPassText = "Thank you. Based on your answers you are eligible to continue. Tap NEXT to go on."
	phqResultsFailText = "Thank you for your answers. Based on your responses, this study is not a good fit " +
		"for you right now. Tap NEXT for more information."

	inductionShortTitle  = "Writing exercise"
	inductionShortPrompt = "Think of a recent time when you felt a strong negative emotion. " +
		"In a few words, what happened?"
	inductionShortInstruction = "A short phrase is fine. You will write more on the next screen."

	inductionLongTitle  = "Writing exercise"
	inductionLongPrompt = "Now write about that experience in as much detail as you can. Keep writing " +
		"until the screen unlocks. What happened, and how did it make you feel?"

	selfReportTextQuestion  = "In a word or two, how are you feeling right now?"
	selfReportScaleQuestion = "How confident are you about what you wrote above?"

	likertTitle    = "Your emotions"
	likertQuestion = "To what extent are you feeling each of these emotions right now?"

	moodCheckTitle    = "Mood check"
	moodCheckQuestion = "Overall, how is your mood right now?"

	summaryTitle      = "Summary"
	summaryText       = "Your input for this activity suggests:"
	summaryFollowText = "Thank you for doing this activity"

	feedbackTitle = "Feedback"
	feedbackText  = "You're almost done. Please tell us about your experience."

	platformCompareText = "Imagine doing an activity like this one using the option below."

	endTitle    = "All done"
	endPassText = "Thank you for completing the study. Copy the completion code below and paste it " +
		"into the submission form to receive credit."
	endFailText = "You did not qualify to complete the full study, so there is no completion code. " +
		"Please contact the research team with any questions."
)

// phqItems are the nine screening items, answered on the 0-3 frequency scale.
var phqItems = []string{
	"Little interest or pleasure in doing things",
	"Feeling down, depressed, or hopeless",
	"Trouble falling or staying asleep, or sleeping too much",
	"Feeling tired or having little energy",
	"Poor appetite or overeating",
	"Feeling bad about yourself - or that you are a failure or have let yourself or your family down",
	"Trouble concentrating on things, such as reading the newspaper or watching television",
	"Moving or speaking so slowly that other people could have noticed, or the opposite - being so fidgety or restless that you have been moving around a lot more than usual",
	"Thoughts that you would be better off dead or of hurting yourself in some way",
}

var phqQualifiers = []string{
	"Not at all",
	"Several days",
	"More than half the days",
	"Nearly every day",
}

var consentStatements = []model.FormItem{
	{Question: "I am age 18 or older.", Kind: "yesno"},
	{Question: "I have read and understood the consent disclosure form.", Kind: "yesno"},
	{Question: "I agree to participate in this study.", Kind: "yesno"},
	{Question: "I understand I may stop participating at any time.", Kind: "yesno", Fixed: true, Response: true},
}

// likertEmotions are the emotions rated on the pre and post measures.
var likertEmotions = []string{
	"Anger",
	"Anxiety",
	"Disgust",
	"Fear",
	"Guilt",
	"Sadness",
	"Shame",
	"Happiness",
}

var intensityQualifiers = []string{
	"Very slightly or not at all",
	"A little",
	"Moderately",
	"Quite a bit",
	"Extremely",
}

var confidenceQualifiers = []string{
	"Not at all confident",
	"Slightly confident",
	"Somewhat confident",
	"Quite confident",
	"Completely confident",
}

var likelihoodQualifiers = []string{
	"Very unlikely",
	"Unlikely",
	"Not sure",
	"Likely",
	"Very likely",
}

var moodQualifiers = []string{
	"Very negative",
	"Somewhat negative",
	"Neutral",
	"Somewhat positive",
	"Very positive",
}

// feedbackPlatforms are the three options compared on the platform pages.
// Their presentation order is the deterministic per-participant shuffle.
var feedbackPlatforms = []string{
	"a website like this one",
	"a paper worksheet",
	"a mobile app",
}

var intro2Titles = map[string]string{
	model.SectionPrompting: "Prompting Events",
	model.SectionInterp:    "Interpretations of Events",
	model.SectionBio:       "Biological Changes and Experiences",
	model.SectionAct:       "Expressions and Actions",
	model.SectionAfter:     "Aftereffects",
}

var bodyQuestions = map[string]string{
	model.SectionPrompting: "Check the box for each thing you have experienced recently.",
	model.SectionInterp:    "Check the box for each thought you have had recently.",
	model.SectionBio:       "Check the box for each change you have noticed in your body recently.",
	model.SectionAct:       "Check the box for each thing you have done or expressed recently.",
	model.SectionAfter:     "Check the box for each aftereffect you have noticed recently.",
}

func introTitle(section string) string {
	if t, ok := intro2Titles[section]; ok {
		return t
	}
	return "Questions"
}

func bodyQuestion(section string) string {
	if q, ok := bodyQuestions[section]; ok {
		return q
	}
	return "Check the box for each statement that applies to you."
}
