package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-notes/errors"
	meetingDTO "github.com/johnquangdev/meeting-notes/internal/adapter/dto/meeting"
	"github.com/johnquangdev/meeting-notes/internal/adapter/presenter"
	"github.com/johnquangdev/meeting-notes/internal/domain/entities"
)

// MeetingService is the meeting use case consumed by the handler
type MeetingService interface {
	Create(ctx context.Context, userID uuid.UUID, title, transcript string) (*entities.Meeting, error)
	List(ctx context.Context) ([]*entities.Meeting, error)
	Search(ctx context.Context, userID uuid.UUID, query string, topK *int) ([]entities.SimilarMeeting, error)
}

// Meeting handles meeting HTTP requests
type Meeting struct {
	service MeetingService
	logger  *zap.Logger
}

// NewMeetingHandler creates a new meeting handler
func NewMeetingHandler(service MeetingService, logger *zap.Logger) *Meeting {
	return &Meeting{service: service, logger: logger}
}

// CreateMeeting godoc
// @Summary      Summarize and store a transcript
// @Description  Summarizes the transcript, extracts action items and indexes the meeting for search
// @Tags         Meetings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      meetingDTO.CreateMeetingRequest  true  "Transcript"
// @Success      201      {object}  meetingDTO.MeetingResponse
// @Failure      400      {object}  common.ErrorResponse
// @Failure      401      {object}  common.ErrorResponse
// @Failure      429      {object}  common.ErrorResponse
// @Failure      500      {object}  common.ErrorResponse
// @Router       /meetings [post]
func (h *Meeting) CreateMeeting(c echo.Context) error {
	userID, err := CurrentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req meetingDTO.CreateMeetingRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("title and transcript required"))
	}

	m, err := h.service.Create(c.Request().Context(), userID, req.Title, req.Transcript)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusCreated, presenter.ToMeetingResponse(m))
}

// ListMeetings godoc
// @Summary      List meetings
// @Description  Returns every stored meeting, newest first
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   meetingDTO.MeetingResponse
// @Failure      401  {object}  common.ErrorResponse
// @Failure      500  {object}  common.ErrorResponse
// @Router       /meetings [get]
func (h *Meeting) ListMeetings(c echo.Context) error {
	meetings, err := h.service.List(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, presenter.ToMeetingListResponse(meetings))
}

// SearchMeetings godoc
// @Summary      Search the caller's meetings
// @Description  Ranks the caller's meetings by similarity to the query
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        q     query     string  true   "Query text"
// @Param        topK  query     int     false  "Number of results (1-20, default 5)"
// @Success      200   {array}   meetingDTO.SimilarMeetingResponse
// @Failure      400   {object}  common.ErrorResponse
// @Failure      401   {object}  common.ErrorResponse
// @Failure      500   {object}  common.ErrorResponse
// @Router       /meetings/search [get]
func (h *Meeting) SearchMeetings(c echo.Context) error {
	userID, err := CurrentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req meetingDTO.SearchMeetingsRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("topK must be between 1 and 20"))
	}

	hits, err := h.service.Search(c.Request().Context(), userID, req.Query, req.TopK)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, presenter.ToSimilarMeetingsResponse(hits))
}
