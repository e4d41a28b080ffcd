package http

import (
	"errors"
	"net/http"
	"strconv"

	"casasapi/src/domain"
)

func (s *Server) GetPropiedades(w http.ResponseWriter, r *http.Request) {
	listing, err := s.propiedadesService.GetAll(r.Context())
	if err != nil {
		s.logger.Error("Failed to list propiedades", "error", err)
		s.writeError(w, http.StatusInternalServerError, ErrorResponse{Error: "Error obteniendo propiedades"}, err)
		return
	}

	writeJSON(s.logger, w, http.StatusOK, listing)
}

func (s *Server) GetPropiedadByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		// um id que não é número nunca existe
		writeJSON(s.logger, w, http.StatusNotFound, ErrorResponse{Error: domain.ErrPropiedadNotFound.Error()})
		return
	}

	propiedad, err := s.propiedadesService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrPropiedadNotFound) {
			writeJSON(s.logger, w, http.StatusNotFound, ErrorResponse{Error: domain.ErrPropiedadNotFound.Error()})
			return
		}

		s.logger.Error("Failed to get propiedad", "id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, ErrorResponse{Error: "Error obteniendo propiedad"}, err)
		return
	}

	writeJSON(s.logger, w, http.StatusOK, propiedad)
}
