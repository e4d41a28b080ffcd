package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"casasapi/src/services/media"
	"casasapi/src/services/propiedades"
)

// Server representa o servidor HTTP da API
type Server struct {
	logger             *slog.Logger
	server             *http.Server
	mux                *http.ServeMux
	port               int
	development        bool
	propiedadesService *propiedades.PropiedadesService
	orchestrator       *media.Orchestrator
}

// NewServer cria uma nova instância do servidor
func NewServer(
	logger *slog.Logger,
	port int,
	development bool,
	propiedadesService *propiedades.PropiedadesService,
	orchestrator *media.Orchestrator,
) *Server {
	server := &Server{
		mux:                http.NewServeMux(),
		port:               port,
		logger:             logger,
		development:        development,
		propiedadesService: propiedadesService,
		orchestrator:       orchestrator,
	}

	server.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      server.mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second, // lotes de upload esperam o Cloudinary
		IdleTimeout:  120 * time.Second,
	}

	server.mux.HandleFunc("GET /health", server.Health)

	// Rotas de Leitura
	server.mux.HandleFunc("GET /api/propiedades", server.GetPropiedades)
	server.mux.HandleFunc("GET /api/propiedades/{id}", server.GetPropiedadByID)

	// Rotas de Escritas
	server.mux.HandleFunc("POST /api/propiedades", server.CreatePropiedad)
	server.mux.HandleFunc("PUT /api/propiedades/{id}", server.UpdatePropiedad)
	server.mux.HandleFunc("DELETE /api/propiedades/{id}", server.DeletePropiedad)

	// Mídia
	server.mux.HandleFunc("POST /api/upload", server.UploadSingle)
	server.mux.HandleFunc("POST /api/upload-multiple", server.UploadMultiple)

	return server
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start inicia o servidor HTTP
func (s *Server) Start() error {
	s.logger.Info("Server started", "port", s.port)

	return s.server.ListenAndServe()
}

// Shutdown encerra o servidor HTTP de forma graciosa
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(s.logger, w, http.StatusOK, StatusResponse{Status: "OK"})
}
