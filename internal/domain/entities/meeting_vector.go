package entities

import "time"

// MeetingVector is the document stored for similarity search. The Meeting row
// in PostgreSQL stays authoritative; this copy may be missing.
type MeetingVector struct {
	MeetingID string    `json:"meetingId" bson:"meetingId"`
	UserID    string    `json:"userId" bson:"userId"`
	Title     string    `json:"title" bson:"title"`
	Embedding []float32 `json:"embedding" bson:"embedding"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// NewMeetingVector builds the vector document for a stored meeting
func NewMeetingVector(m *Meeting, embedding []float32) *MeetingVector {
	return &MeetingVector{
		MeetingID: m.ID.String(),
		UserID:    m.UserID.String(),
		Title:     m.Title,
		Embedding: embedding,
		CreatedAt: m.CreatedAt,
	}
}

// SimilarMeeting is one ranked search hit
type SimilarMeeting struct {
	MeetingID string  `json:"meetingId" bson:"meetingId"`
	UserID    string  `json:"-" bson:"userId"`
	Title     string  `json:"title" bson:"title"`
	Score     float64 `json:"score" bson:"score"`
}
