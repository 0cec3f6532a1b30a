package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/sells-group/quakeboard/internal/query"
	"github.com/sells-group/quakeboard/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}

// writeError maps err onto a status code: caller mistakes and invalid view
// names are 400, missing views 404, duplicate view names 409 and anything else 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ce *query.ConfigurationError
	switch {
	case errors.As(err, &ce):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ce.Error()})
	case store.IsInvalidName(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case store.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case store.IsDuplicateName(err):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "view name already exists"})
	default:
		zap.L().Error("api: request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
