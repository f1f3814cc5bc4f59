package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/johnquangdev/meeting-notes/errors"
	"github.com/johnquangdev/meeting-notes/internal/domain/entities"
)

// Parser handles parsing of the model's summary JSON
type Parser struct{}

// NewParser creates a new Parser instance
func NewParser() *Parser {
	return &Parser{}
}

// looseString accepts any JSON scalar and keeps its text form
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*s = ""
	case string:
		*s = looseString(t)
	case float64, bool:
		*s = looseString(fmt.Sprint(t))
	default:
		*s = looseString(strings.TrimSpace(string(b)))
	}
	return nil
}

type rawAction struct {
	Task     looseString `json:"task"`
	Owner    looseString `json:"owner"`
	Deadline looseString `json:"deadline"`
}

type rawSummary struct {
	Summary looseString `json:"summary"`
	Actions []rawAction `json:"actions"`
}

// ParseSummary decodes the model output. The whole text is tried first, then
// the span from the first "{" to the last "}" (models like to wrap JSON in
// prose or markdown fences).
func (p *Parser) ParseSummary(text string) (*entities.ExtractedSummary, error) {
	var raw rawSummary
	err := json.Unmarshal([]byte(strings.TrimSpace(text)), &raw)
	if err != nil {
		candidate, ok := extractJSON(text)
		if !ok {
			return nil, errors.ErrAIParseFailed(fmt.Errorf("no JSON object in model output"))
		}
		raw = rawSummary{}
		if err := json.Unmarshal([]byte(candidate), &raw); err != nil {
			return nil, errors.ErrAIParseFailed(err)
		}
	}

	out := &entities.ExtractedSummary{
		Summary: strings.TrimSpace(string(raw.Summary)),
		Actions: make([]entities.ExtractedAction, 0, len(raw.Actions)),
	}
	for _, a := range raw.Actions {
		out.Actions = append(out.Actions, entities.ExtractedAction{
			Task:     strings.TrimSpace(string(a.Task)),
			Owner:    strings.TrimSpace(string(a.Owner)),
			Deadline: strings.TrimSpace(string(a.Deadline)),
		})
	}
	return out, nil
}

// FormatActionItems renders each action as "task - owner (deadline)".
// Missing owner or deadline segments are omitted; actions without a task are
// dropped.
func (p *Parser) FormatActionItems(actions []entities.ExtractedAction) []string {
	items := make([]string, 0, len(actions))
	for _, a := range actions {
		if a.Task == "" {
			continue
		}
		item := a.Task
		if a.Owner != "" {
			item += " - " + a.Owner
		}
		if a.Deadline != "" {
			item += " (" + a.Deadline + ")"
		}
		items = append(items, strings.TrimSpace(item))
	}
	return items
}

// extractJSON returns the first "{" to last "}" span of content
func extractJSON(content string) (string, bool) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return content[start : end+1], true
}
