// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	EmployeeDependencies
	RecommendationDependencies
	RiskDependencies
	TeamDependencies
	TaskDependencies
	EventDependencies
	PlanningDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler          *HealthHandler
	statsHandler           *StatsHandler
	employeesHandler       *EmployeesHandler
	recommendationsHandler *RecommendationsHandler
	riskHandler            *RiskHandler
	teamHandler            *TeamHandler
	tasksHandler           *TasksHandler
	eventsHandler          *EventsHandler
	planningHandler        *PlanningHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:          NewHealthHandler(),
		statsHandler:           NewStatsHandler(deps),
		employeesHandler:       NewEmployeesHandler(deps),
		recommendationsHandler: NewRecommendationsHandler(deps),
		riskHandler:            NewRiskHandler(deps),
		teamHandler:            NewTeamHandler(deps),
		tasksHandler:           NewTasksHandler(deps),
		eventsHandler:          NewEventsHandler(deps),
		planningHandler:        NewPlanningHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /employees", MetricsMiddleware(s.employeesHandler.HandleList, "employees"))
	mux.HandleFunc("GET /employees/{id}", MetricsMiddleware(s.employeesHandler.HandleGet, "employee"))
	mux.HandleFunc("GET /recommendations", MetricsMiddleware(s.recommendationsHandler.HandleGetRecommendations, "recommendations"))
	mux.HandleFunc("POST /risk", MetricsMiddleware(s.riskHandler.HandlePostRisk, "risk"))
	mux.HandleFunc("GET /team", MetricsMiddleware(s.teamHandler.HandleGetTeam, "team"))

	mux.HandleFunc("POST /tasks", MetricsMiddleware(s.tasksHandler.HandleCreate, "tasks"))
	mux.HandleFunc("GET /tasks", MetricsMiddleware(s.tasksHandler.HandleList, "tasks"))
	mux.HandleFunc("GET /tasks/{id}", MetricsMiddleware(s.tasksHandler.HandleGet, "task"))
	mux.HandleFunc("POST /tasks/{id}/{action}", MetricsMiddleware(s.tasksHandler.HandleCommand, "task_command"))
	mux.HandleFunc("PUT /tasks/{id}/progress", MetricsMiddleware(s.tasksHandler.HandleProgress, "task_progress"))
	mux.HandleFunc("GET /tasks/{id}/analytics", MetricsMiddleware(s.tasksHandler.HandleAnalytics, "task_analytics"))
	mux.HandleFunc("POST /events", MetricsMiddleware(s.eventsHandler.HandlePostEvent, "events"))

	mux.HandleFunc("GET /planning/deadline", MetricsMiddleware(s.planningHandler.HandleDeadline, "planning_deadline"))
	mux.HandleFunc("GET /planning/complexity", MetricsMiddleware(s.planningHandler.HandleComplexity, "planning_complexity"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decodeJSON decodes a request body, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// parseDate accepts a calendar date (2006-01-02) or an RFC3339 timestamp.
// An empty string yields the zero time.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q; use YYYY-MM-DD or RFC3339", s)
	}
	return t, nil
}

func errMissing(field string) error {
	return fmt.Errorf("missing %s", field)
}
