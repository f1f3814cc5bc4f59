package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Meeting is a summarized transcript. It is created once and never updated.
type Meeting struct {
	ID          uuid.UUID                   `json:"id" gorm:"type:uuid;primary_key"`
	Title       string                      `json:"title" gorm:"type:varchar(500);not null"`
	Transcript  string                      `json:"transcript" gorm:"type:text;not null"`
	Summary     *string                     `json:"summary" gorm:"type:text"`
	ActionItems datatypes.JSONSlice[string] `json:"actionItems" gorm:"column:action_items;type:jsonb;not null"`
	UserID      uuid.UUID                   `json:"userId" gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time                   `json:"createdAt" gorm:"autoCreateTime;index"`
	UpdatedAt   time.Time                   `json:"updatedAt" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Meeting) TableName() string {
	return "meetings"
}

// NewMeeting builds a meeting from a summarization result
func NewMeeting(userID uuid.UUID, title, transcript string, result *SummaryResult) *Meeting {
	now := time.Now()
	m := &Meeting{
		ID:          uuid.New(),
		Title:       title,
		Transcript:  transcript,
		ActionItems: datatypes.JSONSlice[string]{},
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if result != nil {
		summary := result.Summary
		m.Summary = &summary
		if len(result.ActionItems) > 0 {
			m.ActionItems = datatypes.JSONSlice[string](result.ActionItems)
		}
	}
	return m
}

// SummaryText returns the summary or an empty string
func (m *Meeting) SummaryText() string {
	if m.Summary == nil {
		return ""
	}
	return *m.Summary
}

// EmbeddingText is the text indexed for similarity search
func (m *Meeting) EmbeddingText() string {
	return BuildEmbeddingText(m.Title, m.SummaryText(), m.ActionItems)
}

// BuildEmbeddingText joins the title, summary and action items into the
// document embedded for a meeting.
func BuildEmbeddingText(title, summary string, actionItems []string) string {
	var sb strings.Builder
	sb.WriteString(title)
	if summary != "" {
		sb.WriteString("\n\n")
		sb.WriteString(summary)
	}
	if len(actionItems) > 0 {
		sb.WriteString("\n\nAction items:")
		for _, item := range actionItems {
			sb.WriteString("\n- ")
			sb.WriteString(item)
		}
	}
	return sb.String()
}
