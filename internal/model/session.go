package model

import "time"

type SessionStatus string

const (
	SessionActive      SessionStatus = "active"
	SessionCompleted   SessionStatus = "completed"
	SessionScreenedOut SessionStatus = "screened_out"
)

// Session is the persisted record of one participant walk-through.
type Session struct {
	ID             string        `json:"id" bson:"_id,omitempty"`
	ParticipantID  int64         `json:"participantId" bson:"participantId"`
	Variant        string        `json:"variant" bson:"variant"`
	Config         FeatureConfig `json:"config" bson:"config"`
	Status         SessionStatus `json:"status" bson:"status"`
	CompletionCode string        `json:"completionCode,omitempty" bson:"completionCode,omitempty"`
	CreatedAt      time.Time     `json:"createdAt" bson:"createdAt"`
	CompletedAt    *time.Time    `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
}

// Progress is the cached view of where a session currently is, kept fresh in
// Redis for the researcher dashboard.
type Progress struct {
	SessionID     string        `json:"sessionId"`
	ParticipantID int64         `json:"participantId"`
	Variant       string        `json:"variant"`
	Position      int           `json:"position"`
	Total         int           `json:"total"`
	Kind          ScreenKind    `json:"kind"`
	Status        SessionStatus `json:"status"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// ResponseSnapshot is one changed answer as written to the document store.
type ResponseSnapshot struct {
	SessionID  string      `json:"sessionId" bson:"sessionId"`
	Question   string      `json:"question" bson:"question"`
	Group      string      `json:"group" bson:"group"`
	Response   interface{} `json:"response" bson:"response"`
	Emotions   []string    `json:"emotions,omitempty" bson:"emotions,omitempty"`
	RecordedAt time.Time   `json:"recordedAt" bson:"recordedAt"`
}

// Event is a timestamped navigation event.
type Event struct {
	SessionID string    `json:"sessionId" bson:"sessionId"`
	Name      string    `json:"name" bson:"name"`
	At        time.Time `json:"at" bson:"at"`
}
