package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/hr-assistant/internal/filtering"
	"github.com/spigell/hr-assistant/internal/roster"
)

const rootMessage = "HR Resource Query Chatbot API is running!"

type chatRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Employees []roster.EmployeeRecord `json:"employees"`
	Count     int                     `json:"count"`
}

type healthResponse struct {
	Status          string `json:"status"`
	EmployeesLoaded int    `json:"employees_loaded"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"message": rootMessage})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		s.errorResponse(w, http.StatusBadRequest, "Query must not be empty")
		return
	}

	if err := s.queries.Acquire(r.Context(), 1); err != nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "Request cancelled while waiting for capacity")
		return
	}
	defer s.queries.Release(1)

	result, err := s.processor.Process(r.Context(), query)
	if err != nil {
		s.requestLogger(r).Error("query failed", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "Error processing query: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}

func (s *Server) handleEmployees(w http.ResponseWriter, _ *http.Request) {
	records := s.processor.Roster().All()
	if records == nil {
		records = []roster.EmployeeRecord{}
	}
	s.jsonResponse(w, http.StatusOK, records)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	cfg := &filtering.Config{
		Skills:       filtering.ParseSkills(q.Get("skills")),
		Availability: q.Get("availability"),
		Department:   q.Get("department"),
	}

	if raw := strings.TrimSpace(q.Get("min_experience")); raw != "" {
		years, err := strconv.Atoi(raw)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "min_experience must be an integer")
			return
		}
		cfg.MinExperience = years
	}

	employees, err := filtering.Search(r.Context(), cfg, s.processor.Roster().All(), s.requestLogger(r))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, searchResponse{Employees: employees, Count: len(employees)})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, healthResponse{
		Status:          "healthy",
		EmployeesLoaded: s.processor.Roster().Len(),
	})
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("encoding JSON response", zap.Error(err))
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, detail string) {
	s.jsonResponse(w, status, map[string]string{"detail": detail})
}
