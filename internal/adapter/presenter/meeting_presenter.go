package presenter

import (
	meetingDTO "github.com/johnquangdev/meeting-notes/internal/adapter/dto/meeting"
	"github.com/johnquangdev/meeting-notes/internal/domain/entities"
)

// ToMeetingResponse converts a Meeting entity to its DTO
func ToMeetingResponse(m *entities.Meeting) *meetingDTO.MeetingResponse {
	if m == nil {
		return nil
	}
	items := []string(m.ActionItems)
	if items == nil {
		items = []string{}
	}
	return &meetingDTO.MeetingResponse{
		ID:          m.ID.String(),
		Title:       m.Title,
		Transcript:  m.Transcript,
		Summary:     m.Summary,
		ActionItems: items,
		UserID:      m.UserID.String(),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ToMeetingListResponse converts meetings, keeping their order. An empty
// input yields an empty slice so the body is [] rather than null.
func ToMeetingListResponse(meetings []*entities.Meeting) []*meetingDTO.MeetingResponse {
	out := make([]*meetingDTO.MeetingResponse, 0, len(meetings))
	for _, m := range meetings {
		out = append(out, ToMeetingResponse(m))
	}
	return out
}

// ToSimilarMeetingsResponse converts search hits
func ToSimilarMeetingsResponse(hits []entities.SimilarMeeting) []meetingDTO.SimilarMeetingResponse {
	out := make([]meetingDTO.SimilarMeetingResponse, 0, len(hits))
	for _, h := range hits {
		out = append(out, meetingDTO.SimilarMeetingResponse{
			MeetingID: h.MeetingID,
			Title:     h.Title,
			Score:     h.Score,
		})
	}
	return out
}
