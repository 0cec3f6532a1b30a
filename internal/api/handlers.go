package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/quakeboard/internal/geo"
	"github.com/sells-group/quakeboard/internal/grid"
	"github.com/sells-group/quakeboard/internal/model"
	"github.com/sells-group/quakeboard/internal/query"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.cache.Stats())
}

type optionsResponse struct {
	query.Options
	Source   string    `json:"source"`
	Records  int       `json:"records"`
	LoadedAt time.Time `json:"loaded_at"`
}

func (s *Server) handleOptions(w http.ResponseWriter, _ *http.Request) {
	ds := s.engine.Dataset()
	writeJSON(w, http.StatusOK, optionsResponse{
		Options:  s.engine.Options(),
		Source:   ds.Source,
		Records:  ds.Len(),
		LoadedAt: ds.LoadedAt,
	})
}

type recordsResponse struct {
	Count   int            `json:"count"`
	Records []model.Record `json:"records"`
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	spec, err := ParseFilterSpec(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	records, err := s.engine.Filter(spec)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recordsResponse{Count: len(records), Records: records})
}

func (s *Server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	spec, err := ParseFilterSpec(q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	cols, err := ParseColumns(q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	stat, err := ParseStatistic(q)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := s.engine.Aggregate(spec, cols, stat)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	spec, err := ParseFilterSpec(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.writeGrid(w, r, spec)
}

func (s *Server) writeGrid(w http.ResponseWriter, r *http.Request, spec model.FilterSpec) {
	v, err := s.grid.Build(s.engine, spec)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleGridExport(w http.ResponseWriter, r *http.Request) {
	spec, err := ParseFilterSpec(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	v, err := s.grid.Build(s.engine, spec)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="quakes-%s.xlsx"`, time.Now().UTC().Format("20060102")))
	if err := grid.Export(v, w); err != nil {
		// Headers are already sent; all that is left is to log.
		zap.L().Error("api: export grid", zap.Error(err))
	}
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	spec, err := ParseFilterSpec(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	v, err := geo.Build(s.engine, spec)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleListViews(w http.ResponseWriter, r *http.Request) {
	views, err := s.store.ListViews(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

type createViewRequest struct {
	Name string           `json:"name"`
	Spec model.FilterSpec `json:"spec"`
}

func (s *Server) handleCreateView(w http.ResponseWriter, r *http.Request) {
	var req createViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, &query.ConfigurationError{Field: "body", Reason: "invalid JSON"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, r, &query.ConfigurationError{Field: "name", Reason: "is required"})
		return
	}
	if err := query.Validate(req.Spec); err != nil {
		writeError(w, r, err)
		return
	}

	v, err := s.store.CreateView(r.Context(), req.Name, req.Spec)
	if err != nil {
		writeError(w, r, err)
		return
	}
	zap.L().Info("api: view created", zap.String("id", v.ID), zap.String("name", v.Name))
	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) handleGetView(w http.ResponseWriter, r *http.Request) {
	v, err := s.store.GetView(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleDeleteView(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteView(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleViewGrid(w http.ResponseWriter, r *http.Request) {
	v, err := s.store.GetView(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.writeGrid(w, r, v.Spec)
}
