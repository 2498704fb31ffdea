package calendar

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/klokku/calbar/internal/rest"
	"github.com/klokku/calbar/internal/utils"
	log "github.com/sirupsen/logrus"
)

// HandlerSettings are the display defaults used when a request leaves them out.
type HandlerSettings struct {
	Location   *time.Location
	DayFormat  string
	Horizon    time.Duration
	NextWithin time.Duration
}

type Handler struct {
	calendar *Service
	settings HandlerSettings
	clock    utils.Clock
}

type CalendarDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	TimeZone    string `json:"timeZone"`
	Active      bool   `json:"active"`
}

type EventDTO struct {
	ID          string `json:"id"`
	CalendarID  string `json:"calendarId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	AllDay      bool   `json:"allDay"`
	Start       string `json:"start"`
	End         string `json:"end"`
}

type DayGroupDTO struct {
	Day    string     `json:"day"`
	Events []EventDTO `json:"events"`
}

type activeRequest struct {
	Active *bool `json:"active"`
}

func NewHandler(s *Service, settings HandlerSettings) *Handler {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	return &Handler{calendar: s, settings: settings, clock: utils.SystemClock{}}
}

func (h *Handler) ListCalendars(w http.ResponseWriter, r *http.Request) {
	calendars, err := h.calendar.Calendars(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	dtos := make([]CalendarDTO, 0, len(calendars))
	for _, c := range calendars.Sorted() {
		dtos = append(dtos, calendarToDTO(c))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

func (h *Handler) SetActive(w http.ResponseWriter, r *http.Request) {
	calendarId := mux.Vars(r)["calendarId"]

	var body activeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Active == nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", `expected {"active": true|false}`)
		return
	}

	updated, err := h.calendar.SetActive(r.Context(), calendarId, *body.Active)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, calendarToDTO(updated))
}

func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	query := EventQuery{}

	window, ok := h.parseWindow(w, r, false)
	if !ok {
		return
	}
	query.Window = window

	if limitString := r.URL.Query().Get("limit"); limitString != "" {
		limit, err := strconv.Atoi(limitString)
		if err != nil || limit < 0 {
			rest.WriteError(w, http.StatusBadRequest, "Invalid limit", "'limit' must be a non-negative integer")
			return
		}
		query.Limit = limit
	}
	if activeString := r.URL.Query().Get("active"); activeString != "" {
		active, err := strconv.ParseBool(activeString)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid active flag", "'active' must be true or false")
			return
		}
		query.ActiveOnly = active
	}

	events, err := h.calendar.FindEvents(r.Context(), query)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, eventsToDTO(events))
}

func (h *Handler) GetAgenda(w http.ResponseWriter, r *http.Request) {
	window, ok := h.parseWindow(w, r, true)
	if !ok {
		return
	}

	loc := h.settings.Location
	if tz := r.URL.Query().Get("tz"); tz != "" {
		var err error
		loc, err = time.LoadLocation(tz)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid time zone", err.Error())
			return
		}
	}

	groups, err := h.calendar.Agenda(r.Context(), window.From, window.To, loc, h.settings.DayFormat)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	dtos := make([]DayGroupDTO, 0, len(groups))
	for _, g := range groups {
		dtos = append(dtos, DayGroupDTO{Day: g.Key, Events: eventsToDTO(g.Events)})
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetNext(w http.ResponseWriter, r *http.Request) {
	event, ok, err := h.calendar.NextEvent(r.Context(), h.settings.NextWithin)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	rest.WriteJSON(w, http.StatusOK, eventToDTO(event))
}

// parseWindow reads from/to (RFC3339). Both or neither must be given; with neither, a
// defaulted window from now over the configured horizon is used when required.
func (h *Handler) parseWindow(w http.ResponseWriter, r *http.Request, required bool) (*Window, bool) {
	fromString := r.URL.Query().Get("from")
	toString := r.URL.Query().Get("to")
	if fromString == "" && toString == "" {
		if !required {
			return nil, true
		}
		now := h.clock.Now()
		return NewWindow(now, now.Add(h.settings.Horizon)), true
	}

	from, err := time.Parse(time.RFC3339, fromString)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid from (date) format", "'from' must be in RFC3339 format")
		return nil, false
	}
	to, err := time.Parse(time.RFC3339, toString)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid to (date) format", "'to' must be in RFC3339 format")
		return nil, false
	}
	return NewWindow(from, to), true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrCalendarNotFound):
		rest.WriteError(w, http.StatusNotFound, "Calendar not found", err.Error())
	case errors.Is(err, ErrInvalidQuery), errors.Is(err, ErrInvalidEvent), errors.Is(err, ErrInvalidCalendar):
		rest.WriteError(w, http.StatusBadRequest, "Invalid request", err.Error())
	default:
		log.Errorf("request failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Internal error", err.Error())
	}
}

func calendarToDTO(c Calendar) CalendarDTO {
	return CalendarDTO{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		TimeZone:    c.TimeZone,
		Active:      c.Active,
	}
}

func eventToDTO(e Event) EventDTO {
	return EventDTO{
		ID:          e.ID,
		CalendarID:  e.CalendarID,
		Name:        e.Name,
		Description: e.Description,
		AllDay:      e.AllDay(),
		Start:       encodeMoment(e.Start()),
		End:         encodeMoment(e.End()),
	}
}

func eventsToDTO(events []Event) []EventDTO {
	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, eventToDTO(e))
	}
	return dtos
}
