package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"hotelstats/internal/vendor"
)

type errorResponse struct {
	Error          string `json:"error"`
	UpstreamStatus int    `json:"upstreamStatus,omitempty"`
	UpstreamBody   string `json:"upstreamBody,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeFetchError maps a failure to obtain vendor data onto 502.
func (s *HTTPServer) writeFetchError(w http.ResponseWriter, r *http.Request, err error) {
	zerolog.Ctx(r.Context()).Error().Err(err).Msg("report failed")

	var upErr *vendor.UpstreamError
	if errors.As(err, &upErr) {
		writeJSON(w, http.StatusBadGateway, errorResponse{
			Error:          fmt.Sprintf("upstream returned status %d", upErr.StatusCode),
			UpstreamStatus: upErr.StatusCode,
			UpstreamBody:   upErr.Body,
		})
		return
	}

	var parseErr *vendor.ParseError
	if errors.As(err, &parseErr) {
		writeError(w, http.StatusBadGateway, "upstream returned an unreadable response")
		return
	}
	writeError(w, http.StatusBadGateway, "upstream request failed")
}
