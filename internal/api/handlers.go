package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"temp-monitor/internal/model"
	"temp-monitor/internal/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// handleRecentReadings serves up to ?limit= readings, newest first.
// A missing, non-numeric, or non-positive limit falls back to the
// store default of 20.
func (s *Server) handleRecentReadings(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		limit = 0 // store normalizes to the default
	}

	rows, err := s.store.RecentSensorReadings(r.Context(), limit)
	if err != nil {
		log.Printf("api: recent readings: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load readings")
		return
	}
	if rows == nil {
		rows = []model.Reading{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleLatestReading(w http.ResponseWriter, r *http.Request) {
	reading, err := s.store.LatestSensorReading(r.Context())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no readings yet")
			return
		}
		log.Printf("api: latest reading: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load reading")
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	u, err := s.store.CreateUser(r.Context(), store.NewUser{Username: req.Username, Password: req.Password})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			writeError(w, http.StatusConflict, "username already taken")
			return
		}
		log.Printf("api: create user: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
