package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"casasapi/src/services/validation"
)

const maxPropiedadBody = 2 * 1024 * 1024

func decodeCandidate(w http.ResponseWriter, r *http.Request) (validation.Candidate, error) {
	var candidate validation.Candidate

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPropiedadBody))
	decoder.UseNumber()
	err := decoder.Decode(&candidate)

	// o decoder continua depois de um tipo errado, então o resto do candidato vem preenchido
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return candidate, validation.TypeMismatch(typeErr.Field)
	}
	return candidate, err
}

func (s *Server) writeValidationError(w http.ResponseWriter, validationErr *validation.Error, recibidos map[string]bool) {
	writeJSON(s.logger, w, http.StatusBadRequest, ErrorResponse{
		Error:     validationErr.Message,
		Campo:     validationErr.Field,
		Motivo:    validationErr.Reason,
		Recibidos: recibidos,
	})
}

func (s *Server) CreatePropiedad(w http.ResponseWriter, r *http.Request) {
	candidate, err := decodeCandidate(w, r)
	var validationErr *validation.Error
	if errors.As(err, &validationErr) {
		s.writeValidationError(w, validationErr, candidate.Recibidos())
		return
	}
	if err != nil {
		s.writeError(w, http.StatusBadRequest, ErrorResponse{Error: "Cuerpo JSON inválido"}, err)
		return
	}

	created, err := s.propiedadesService.Create(r.Context(), candidate)
	if err != nil {
		if errors.As(err, &validationErr) {
			s.writeValidationError(w, validationErr, candidate.Recibidos())
			return
		}

		s.logger.Error("Failed to create propiedad", "error", err)
		s.writeError(w, http.StatusInternalServerError, ErrorResponse{Error: "Error creando propiedad"}, err)
		return
	}

	response := CreatedResponse{
		Message:      "Propiedad creada exitosamente",
		ID:           created.ID,
		Advertencias: created.Warnings,
	}
	writeJSON(s.logger, w, http.StatusCreated, response)
}
