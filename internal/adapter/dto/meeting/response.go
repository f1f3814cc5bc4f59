package meeting

import "time"

// MeetingResponse represents a stored meeting
type MeetingResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Transcript  string    `json:"transcript"`
	Summary     *string   `json:"summary"`
	ActionItems []string  `json:"actionItems"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SimilarMeetingResponse is one search hit
type SimilarMeetingResponse struct {
	MeetingID string  `json:"meetingId"`
	Title     string  `json:"title"`
	Score     float64 `json:"score"`
}
