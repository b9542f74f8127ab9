package wishlistapi

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondInternalError(w http.ResponseWriter, req *http.Request, err error) {
	zerolog.Ctx(req.Context()).Error().Err(err).
		Str("path", req.URL.Path).
		Msg("request failed")
	respondError(w, http.StatusInternalServerError, "internal error")
}

func decodeBody(req *http.Request, v interface{}) error {
	defer req.Body.Close()
	return json.NewDecoder(req.Body).Decode(v)
}
