package http

import (
	"errors"
	"net/http"
	"strconv"

	"casasapi/src/services/validation"
)

func (s *Server) UpdatePropiedad(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(s.logger, w, http.StatusBadRequest, ErrorResponse{Error: "ID de propiedad inválido"})
		return
	}

	candidate, err := decodeCandidate(w, r)
	var validationErr *validation.Error
	if errors.As(err, &validationErr) {
		s.writeValidationError(w, validationErr, nil)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusBadRequest, ErrorResponse{Error: "Cuerpo JSON inválido"}, err)
		return
	}

	warnings, err := s.propiedadesService.Update(r.Context(), id, candidate)
	if err != nil {
		if errors.As(err, &validationErr) {
			s.writeValidationError(w, validationErr, nil)
			return
		}

		s.logger.Error("Failed to update propiedad", "id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, ErrorResponse{Error: "Error actualizando propiedad"}, err)
		return
	}

	writeJSON(s.logger, w, http.StatusOK, UpdatedResponse{
		Message:      "Propiedad actualizada exitosamente",
		Advertencias: warnings,
	})
}
