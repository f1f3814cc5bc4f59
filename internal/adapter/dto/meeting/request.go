package meeting

// CreateMeetingRequest carries a transcript to summarize
type CreateMeetingRequest struct {
	Title      string `json:"title" validate:"required"`
	Transcript string `json:"transcript" validate:"required"`
}

// SearchMeetingsRequest holds the similarity search query string. TopK is
// nil when the parameter is absent.
type SearchMeetingsRequest struct {
	Query string `query:"q"`
	TopK  *int   `query:"topK"`
}
