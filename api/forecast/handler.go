// Package forecast exposes the prediction service over HTTP.
package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/pun33th45/spotmate/core/forecast"
	"github.com/pun33th45/spotmate/infra/logger"
)

// Handler serves forecast requests as JSON.
type Handler struct {
	svc *forecast.Service
	log logger.Logger
}

// NewHandler builds the HTTP handler over the prediction service.
func NewHandler(svc *forecast.Service, log logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop{}
	}
	return &Handler{svc: svc, log: log}
}

// Register attaches the API routes to the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/forecast", h.handleForecast)
	mux.HandleFunc("GET /api/forecast/series", h.handleSeries)
	mux.HandleFunc("GET /healthz", h.handleHealth)
}

type forecastResponse struct {
	RequestID string  `json:"request_id"`
	ZoneID    string  `json:"zone_id"`
	Day       int     `json:"day"`
	Hour      int     `json:"hour"`
	Occupancy float64 `json:"occupancy,omitempty"`
	Available bool    `json:"available"`
}

type seriesResponse struct {
	RequestID string                  `json:"request_id"`
	ZoneID    string                  `json:"zone_id"`
	Day       int                     `json:"day"`
	Series    []forecast.HourForecast `json:"series"`
	Summary   forecast.Summary        `json:"summary"`
}

type errorResponse struct {
	RequestID string `json:"request_id"`
	Error     string `json:"error"`
}

func (h *Handler) handleForecast(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.NewString()
	zone, day, hour, err := parseQuery(r, true)
	if err != nil {
		h.writeError(w, reqID, http.StatusBadRequest, err)
		return
	}
	value, ok, err := h.svc.Predict(r.Context(), zone, day, hour)
	if err != nil {
		h.writeError(w, reqID, statusFor(err), err)
		return
	}
	h.writeJSON(w, http.StatusOK, forecastResponse{
		RequestID: reqID,
		ZoneID:    zone,
		Day:       day,
		Hour:      hour,
		Occupancy: value,
		Available: ok,
	})
}

func (h *Handler) handleSeries(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.NewString()
	zone, day, _, err := parseQuery(r, false)
	if err != nil {
		h.writeError(w, reqID, http.StatusBadRequest, err)
		return
	}
	hours := 24
	if raw := r.URL.Query().Get("hours"); raw != "" {
		hours, err = strconv.Atoi(raw)
		if err != nil || hours < 1 || hours > 24 {
			h.writeError(w, reqID, http.StatusBadRequest, errors.New("hours must be in 1..24"))
			return
		}
	}
	series, err := h.svc.PredictSeries(r.Context(), zone, day, hours)
	if err != nil {
		h.writeError(w, reqID, statusFor(err), err)
		return
	}
	h.writeJSON(w, http.StatusOK, seriesResponse{
		RequestID: reqID,
		ZoneID:    zone,
		Day:       day,
		Series:    series,
		Summary:   forecast.SummarizeSeries(series),
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !h.svc.Available(r.Context()) {
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseQuery(r *http.Request, wantHour bool) (zone string, day, hour int, err error) {
	q := r.URL.Query()
	zone = q.Get("zone")
	if zone == "" {
		return "", 0, 0, errors.New("zone is required")
	}
	day, err = strconv.Atoi(q.Get("day"))
	if err != nil || day < 1 {
		return "", 0, 0, errors.New("day must be a positive integer")
	}
	if !wantHour {
		return zone, day, 0, nil
	}
	if m := q.Get("meridiem"); m != "" {
		h12, cerr := strconv.Atoi(q.Get("hour"))
		if cerr != nil {
			return "", 0, 0, errors.New("hour must be an integer")
		}
		hour, err = forecast.ConvertTo24Hour(h12, m)
		if err != nil {
			return "", 0, 0, err
		}
		return zone, day, hour, nil
	}
	hour, err = strconv.Atoi(q.Get("hour"))
	if err != nil || hour < 0 || hour > 23 {
		return "", 0, 0, errors.New("hour must be in 0..23")
	}
	return zone, day, hour, nil
}

func statusFor(err error) int {
	if errors.Is(err, context.Canceled) {
		return http.StatusRequestTimeout
	}
	return http.StatusServiceUnavailable
}

func (h *Handler) writeError(w http.ResponseWriter, reqID string, status int, err error) {
	h.log.Warnf("request %s failed: %v", reqID, err)
	h.writeJSON(w, status, errorResponse{RequestID: reqID, Error: err.Error()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Errorf("encode response: %v", err)
	}
}
