package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

func writeJSON(logger *slog.Logger, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to write JSON response", "error", err)
	}
}

// writeError anexa o stack do erro apenas em desenvolvimento.
func (s *Server) writeError(w http.ResponseWriter, status int, response ErrorResponse, err error) {
	if s.development && err != nil {
		response.Stack = fmt.Sprintf("%+v", err)
	}
	writeJSON(s.logger, w, status, response)
}
