package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/mnemoflash/internal/errors"
	"github.com/vytor/mnemoflash/internal/logger"
)

// maxBodyBytes bounds request bodies. Card payloads can carry a data URL image.
const maxBodyBytes = 16 << 20

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode response: %v", err)
	}
}

// decodeJSON reads the request body into dst. An empty body leaves dst
// unchanged when allowEmpty is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(body).Decode(dst)
	switch {
	case err == nil:
		return nil
	case err == io.EOF && allowEmpty:
		return nil
	case err == io.EOF:
		return errors.NewBadRequestError("request body is required")
	}
	return errors.NewBadRequestError("invalid JSON body: " + err.Error())
}

func idParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewBadRequestError("invalid " + name + ": " + raw)
	}
	return id, nil
}

func intQuery(r *http.Request, name string, def int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(name)); err == nil {
		return v
	}
	return def
}
