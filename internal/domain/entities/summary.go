package entities

// SummaryResult is what the summarizer extracts from a transcript
type SummaryResult struct {
	Summary     string
	ActionItems []string
	// Embedding is nil when the embedding call failed
	Embedding []float32
}

// HasEmbedding reports whether a usable vector was produced
func (r *SummaryResult) HasEmbedding() bool {
	return r != nil && len(r.Embedding) > 0
}

// ExtractedAction is one entry of the model's "actions" array
type ExtractedAction struct {
	Task     string `json:"task"`
	Owner    string `json:"owner"`
	Deadline string `json:"deadline"`
}

// ExtractedSummary is the JSON object the model is asked to return
type ExtractedSummary struct {
	Summary string            `json:"summary"`
	Actions []ExtractedAction `json:"actions"`
}
