package http

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"casasapi/src/services/media"
)

const multipartOverhead = 1024 * 1024

func (s *Server) UploadSingle(w http.ResponseWriter, r *http.Request) {
	policy := s.orchestrator.Policy()
	r.Body = http.MaxBytesReader(w, r.Body, policy.MaxFileSize+multipartOverhead)

	reader, err := r.MultipartReader()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("Error al subir: %v", err)}, err)
		return
	}

	payload, found, err := s.nextFile(reader, "file")
	if err != nil {
		s.writeReadError(w, err)
		return
	}
	if !found {
		writeJSON(s.logger, w, http.StatusBadRequest, ErrorResponse{Error: "No se subió ningún archivo"})
		return
	}

	uploaded, err := s.orchestrator.UploadSingle(r.Context(), payload)
	if err != nil {
		s.writeUploadError(w, err)
		return
	}

	writeJSON(s.logger, w, http.StatusOK, UploadResponse{
		URL:      uploaded.URL,
		PublicID: uploaded.PublicID,
		Filename: uploaded.Filename,
	})
}

func (s *Server) UploadMultiple(w http.ResponseWriter, r *http.Request) {
	policy := s.orchestrator.Policy()
	r.Body = http.MaxBytesReader(w, r.Body, int64(policy.MaxBatch)*policy.MaxFileSize+multipartOverhead)

	reader, err := r.MultipartReader()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("Error al subir: %v", err)}, err)
		return
	}

	payloads := make([]media.Payload, 0, policy.MaxBatch)
	for {
		payload, found, err := s.nextFile(reader, "files")
		if err != nil {
			s.writeReadError(w, err)
			return
		}
		if !found {
			break
		}
		if len(payloads) == policy.MaxBatch {
			s.writeUploadError(w, media.ErrTooManyFiles)
			return
		}
		payloads = append(payloads, payload)
	}

	if len(payloads) == 0 {
		writeJSON(s.logger, w, http.StatusBadRequest, ErrorResponse{Error: "No se subieron archivos"})
		return
	}

	urls, err := s.orchestrator.UploadBatch(r.Context(), payloads)
	if err != nil {
		s.writeUploadError(w, err)
		return
	}

	writeJSON(s.logger, w, http.StatusOK, UploadMultipleResponse{URLs: urls})
}

// nextFile avança até a próxima parte de arquivo do campo e lê no máximo MaxFileSize+1 bytes.
// Um arquivo acima do limite vira RejectedError por tamanho sem ler o resto do corpo.
func (s *Server) nextFile(reader *multipart.Reader, field string) (media.Payload, bool, error) {
	maxFileSize := s.orchestrator.Policy().MaxFileSize

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return media.Payload{}, false, nil
		}
		if err != nil {
			return media.Payload{}, false, err
		}
		if part.FormName() != field || part.FileName() == "" {
			continue
		}

		data, err := io.ReadAll(io.LimitReader(part, maxFileSize+1))
		payload := media.Payload{Filename: part.FileName(), Data: data}

		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return media.Payload{}, false, s.orchestrator.Oversize(payload)
		case err != nil:
			return media.Payload{}, false, err
		case int64(len(data)) > maxFileSize:
			return media.Payload{}, false, s.orchestrator.Oversize(payload)
		}
		return payload, true, nil
	}
}

func (s *Server) writeReadError(w http.ResponseWriter, err error) {
	var rejected *media.RejectedError
	if errors.As(err, &rejected) {
		s.writeUploadError(w, err)
		return
	}
	s.writeError(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("Error al subir: %v", err)}, err)
}

func (s *Server) writeUploadError(w http.ResponseWriter, err error) {
	var rejected *media.RejectedError
	switch {
	case errors.As(err, &rejected):
		message := fmt.Sprintf("Tipo de archivo no permitido: %s", rejected.DetectedType)
		if rejected.Constraint == media.ConstraintMaxSize {
			message = fmt.Sprintf("Archivo demasiado grande: máximo %d MB", s.orchestrator.Policy().MaxFileSize/(1024*1024))
		}
		writeJSON(s.logger, w, http.StatusBadRequest, ErrorResponse{
			Error:   message,
			Archivo: rejected.Filename,
			Motivo:  rejected.Constraint,
		})
	case errors.Is(err, media.ErrNoFiles):
		writeJSON(s.logger, w, http.StatusBadRequest, ErrorResponse{Error: "No se subieron archivos"})
	case errors.Is(err, media.ErrTooManyFiles):
		writeJSON(s.logger, w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("Máximo %d archivos por subida", s.orchestrator.Policy().MaxBatch)})
	default:
		s.logger.Error("Upload failed", "error", err)
		s.writeError(w, http.StatusBadRequest, ErrorResponse{Error: "Error al subir a Cloudinary"}, err)
	}
}
