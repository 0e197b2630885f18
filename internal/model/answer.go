package model

// Response group names. The same question text can be asked in more than one
// context (pre vs post measurement, for example); the group keeps those
// records apart in the AnswerStore.
const (
	GroupConsent   = "consent"
	GroupPHQ       = "phq"
	GroupInduction = "induction"
	GroupPre       = "pre"
	GroupPost      = "post"
	GroupBody      = "body"
	GroupMoodCheck = "mood_check"
	GroupFeedback  = "feedback"
)

// AnswerRecord is one question together with the participant's current
// answer. Question, Group and Emotions are fixed at creation; only Response
// is ever mutated, and only through the engine.
type AnswerRecord struct {
	Question string      `json:"question" bson:"question"`
	Response interface{} `json:"response" bson:"response"`
	Emotions []string    `json:"emotions,omitempty" bson:"emotions,omitempty"`
	Group    string      `json:"group" bson:"group"`
}

// BoolResponse reports whether the record currently holds a true answer.
func (r *AnswerRecord) BoolResponse() bool {
	b, ok := r.Response.(bool)
	return ok && b
}

// IntResponse converts the response to an int. JSON decoding hands numbers
// over as float64, so both forms are accepted. Anything else counts as 0.
func (r *AnswerRecord) IntResponse() int {
	switch v := r.Response.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
