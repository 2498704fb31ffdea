package app

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/klokku/calbar/internal/rest"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Calendars
	r.HandleFunc("/api/calendars", deps.CalendarHandler.ListCalendars).Methods("GET")
	r.HandleFunc("/api/calendars/{calendarId}/active", deps.CalendarHandler.SetActive).Methods("PUT")

	// Events
	r.HandleFunc("/api/events", deps.CalendarHandler.GetEvents).Methods("GET")
	r.HandleFunc("/api/agenda", deps.CalendarHandler.GetAgenda).Methods("GET")
	r.HandleFunc("/api/next", deps.CalendarHandler.GetNext).Methods("GET")

	// Sync
	r.HandleFunc("/api/sync", deps.SyncHandler.Sync).Methods("POST")
	r.HandleFunc("/api/sync/last", deps.SyncHandler.LastReport).Methods("GET")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		rest.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")
}
