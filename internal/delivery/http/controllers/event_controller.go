package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"eventscout/internal/delivery/http/helpers"
	"eventscout/internal/domain"
)

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// LoadEventsResponse is the response body for POST /api/events/load.
type LoadEventsResponse struct {
	Inserted int `json:"inserted"`
}

// LoadEventsSuccessResponse is the success response envelope for POST /api/events/load (200).
type LoadEventsSuccessResponse struct {
	Data  LoadEventsResponse `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// LoadEvents godoc
// @Summary Ingest events
// @Description Runs an ingestion pass. With a JSON array body the records in the body are ingested; with an empty body the configured feed source is fetched and ingested. Records already present (matched by title and city) are skipped, so repeated loads are safe.
// @Tags events
// @Accept json
// @Produce json
// @Param batch body []domain.FeedEvent false "Feed records to ingest (optional)"
// @Success 200 {object} controllers.LoadEventsSuccessResponse "data contains the number of newly inserted events"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events/load [post]
func (c *EventController) LoadEvents(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "read body")
		return
	}

	var inserted int
	if len(strings.TrimSpace(string(body))) == 0 {
		inserted, err = c.Service.SyncFromSource(r.Context())
	} else {
		var batch []domain.FeedEvent
		if jsonErr := json.Unmarshal(body, &batch); jsonErr != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, jsonErr.Error())
			return
		}
		inserted, err = c.Service.IngestFeed(r.Context(), batch)
	}
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to load events")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, LoadEventsResponse{Inserted: inserted})
}

// GetEventSuccessResponse is the success response envelope for GET /api/events/{id} (200).
type GetEventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// GetEvent godoc
// @Summary Get an event by ID
// @Description Returns a single stored event.
// @Tags events
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} controllers.GetEventSuccessResponse "data contains the event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events/{id} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid event id")
		return
	}
	event, err := c.Service.GetEvent(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to fetch event")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// ListEventsSuccessResponse is the success response envelope for GET /api/events (200).
type ListEventsSuccessResponse struct {
	Data  []*domain.Event   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListEvents godoc
// @Summary List events
// @Description Returns stored events, optionally filtered by an exact city match and a comma-separated list of interest categories. Both filters combine with AND; omitting one lifts that restriction. An empty result is a normal outcome.
// @Tags events
// @Produce json
// @Param city query string false "Exact city to filter by"
// @Param interests query string false "Comma-separated interest categories"
// @Success 200 {object} controllers.ListEventsSuccessResponse "data contains the matching events"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(r.URL.Query().Get("city"))
	var interests []string
	if raw := r.URL.Query().Get("interests"); raw != "" {
		interests = strings.Split(raw, ",")
	}

	events, err := c.Service.ListEvents(r.Context(), city, interests)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to fetch events")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}
