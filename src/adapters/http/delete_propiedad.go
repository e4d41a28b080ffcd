package http

import (
	"net/http"
	"strconv"
)

func (s *Server) DeletePropiedad(w http.ResponseWriter, r *http.Request) {
	response := MessageResponse{Message: "Propiedad eliminada exitosamente"}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(s.logger, w, http.StatusOK, response)
		return
	}

	if err := s.propiedadesService.Delete(r.Context(), id); err != nil {
		s.logger.Error("Failed to delete propiedad", "id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, ErrorResponse{Error: "Error eliminando propiedad"}, err)
		return
	}

	writeJSON(s.logger, w, http.StatusOK, response)
}
