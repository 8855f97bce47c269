package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/city-insights/internal/aggregate"
	"github.com/sells-group/city-insights/internal/insights"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func refresh(r *http.Request) bool {
	return strings.EqualFold(r.URL.Query().Get("refresh"), "true")
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Housing

func (s *Server) residential(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := aggregate.HousingFilter{
		HousingType: q.Get("housing_type"),
		Zip:         q.Get("zip"),
		UrbanRing:   q.Get("urban_ring"),
	}
	if y := q.Get("year"); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid year: %s", y))
			return
		}
		f.Year = year
	}
	writeJSON(w, http.StatusOK, s.svc.Residential(r.Context(), f, refresh(r)))
}

func (s *Server) housingAnalytics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.HousingAnalytics(r.Context(), refresh(r)))
}

func (s *Server) demographics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Demographics(r.Context()))
}

// Business

func (s *Server) businessPermits(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.BusinessPermits(r.Context(), refresh(r)))
}

func (s *Server) pipeline(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Pipeline(r.Context(), refresh(r)))
}

func (s *Server) topProjects(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.TopProjects(r.Context(), refresh(r)))
}

func (s *Server) businessMap(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Map(r.Context(), refresh(r)))
}

// Economy

func (s *Server) economyOverview(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.EconomyOverview(r.Context(), refresh(r)))
}

func (s *Server) labor(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Labor(r.Context(), refresh(r)))
}

func (s *Server) growth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Growth(r.Context(), refresh(r)))
}

func (s *Server) industries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Industries(r.Context(), refresh(r)))
}

func (s *Server) zoneBusiness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.ZoneBusiness(r.Context(), refresh(r)))
}

func (s *Server) series(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "series")
	resp, err := s.svc.Series(r.Context(), key, refresh(r))
	if eris.Is(err, insights.ErrUnknownSeries) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Unknown series: %s", key))
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Compare

func (s *Server) compareOverview(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.CompareOverview(r.Context(), refresh(r)))
}

func (s *Server) compareTimeseries(w http.ResponseWriter, r *http.Request) {
	metric := chi.URLParam(r, "metric")
	resp, err := s.svc.CompareTimeseries(r.Context(), metric, refresh(r))
	if eris.Is(err, insights.ErrUnknownMetric) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Unknown metric: %s", metric))
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Cache

func (s *Server) cacheKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := s.svc.CachedKeys(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if keys == nil {
		keys = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"keys": keys})
}

// invalidate drops one snapshot named by ?key= or a {"key": ...} body, or
// every snapshot when neither is given.
func (s *Server) invalidate(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" && r.Body != nil {
		var body struct {
			Key string `json:"key"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		key = body.Key
	}

	if err := s.svc.Invalidate(r.Context(), key); err != nil {
		s.internalError(w, r, err)
		return
	}

	invalidated := key
	if invalidated == "" {
		invalidated = "all"
	}
	s.log.Info("cache invalidated", zap.String("key", invalidated))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "invalidated": invalidated})
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error("request failed",
		zap.String("request_id", RequestIDFrom(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "internal error")
}
