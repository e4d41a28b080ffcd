package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNoFiles      = errors.New("no files")
	ErrTooManyFiles = errors.New("too many files")
	ErrUploadFailed = errors.New("upload failed")
)

const (
	ConstraintMaxSize     = "max_size"
	ConstraintContentType = "content_type"
)

// RejectedError é devolvido antes de qualquer chamada de rede.
type RejectedError struct {
	Filename     string
	DetectedType string
	Constraint   string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("file %q rejected (%s): detected type %s", e.Filename, e.Constraint, e.DetectedType)
}

type Payload struct {
	Filename string
	Data     []byte
}

type Uploaded struct {
	URL      string
	PublicID string
	Filename string
}

// ObjectStore é o armazenamento remoto de mídia.
type ObjectStore interface {
	Upload(ctx context.Context, data []byte, folder string) (url string, publicID string, err error)
	Destroy(ctx context.Context, publicID string) error
}

// OrphanReporter recebe os uploads concluídos de um lote que falhou.
type OrphanReporter interface {
	ReportOrphans(ctx context.Context, folder string, publicIDs []string) error
}

type Policy struct {
	MaxFileSize   int64
	AllowedTypes  []string
	MaxBatch      int
	Timeout       time.Duration
	Folder        string
	GalleryFolder string
}

func DefaultPolicy() Policy {
	return Policy{
		MaxFileSize:   10 * 1024 * 1024,
		AllowedTypes:  []string{"image/jpeg", "image/png", "image/webp", "image/gif", "image/avif"},
		MaxBatch:      10,
		Timeout:       30 * time.Second,
		Folder:        "casas-ernestina",
		GalleryFolder: "casas-ernestina/gallery",
	}
}

type Orchestrator struct {
	logger   *slog.Logger
	store    ObjectStore
	reporter OrphanReporter
	policy   Policy
}

// reporter pode ser nil; nesse caso os órfãos só são logados.
func NewOrchestrator(logger *slog.Logger, store ObjectStore, reporter OrphanReporter, policy Policy) *Orchestrator {
	return &Orchestrator{
		logger:   logger,
		store:    store,
		reporter: reporter,
		policy:   policy,
	}
}

func (o *Orchestrator) Policy() Policy {
	return o.policy
}

// Check valida tamanho e tipo real do conteúdo; o content-type declarado é ignorado.
func (o *Orchestrator) Check(payload Payload) error {
	if int64(len(payload.Data)) > o.policy.MaxFileSize {
		return o.Oversize(payload)
	}

	detected := mimetype.Detect(payload.Data)

	for _, allowed := range o.policy.AllowedTypes {
		if detected.Is(allowed) {
			return nil
		}
	}
	return &RejectedError{Filename: payload.Filename, DetectedType: detected.String(), Constraint: ConstraintContentType}
}

// Oversize rejeita por tamanho um arquivo do qual só os primeiros bytes foram lidos;
// o tipo é detectado a partir deles.
func (o *Orchestrator) Oversize(payload Payload) *RejectedError {
	return &RejectedError{
		Filename:     payload.Filename,
		DetectedType: mimetype.Detect(payload.Data).String(),
		Constraint:   ConstraintMaxSize,
	}
}

func (o *Orchestrator) UploadSingle(ctx context.Context, payload Payload) (Uploaded, error) {
	if err := o.Check(payload); err != nil {
		return Uploaded{}, err
	}

	url, publicID, err := o.upload(ctx, payload, o.policy.Folder)
	if err != nil {
		return Uploaded{}, fmt.Errorf("Orchestrator.UploadSingle - %s: %w: %w", payload.Filename, ErrUploadFailed, err)
	}

	o.logger.Info("file uploaded", "filename", payload.Filename, "public_id", publicID)
	return Uploaded{URL: url, PublicID: publicID, Filename: payload.Filename}, nil
}

// UploadBatch envia todos os arquivos em paralelo e devolve as URLs na ordem de entrada.
// Uma falha invalida o lote inteiro; os irmãos não são cancelados e os que
// terminaram viram órfãos reportados ao OrphanReporter.
func (o *Orchestrator) UploadBatch(ctx context.Context, payloads []Payload) ([]string, error) {
	if len(payloads) == 0 {
		return nil, ErrNoFiles
	}
	if len(payloads) > o.policy.MaxBatch {
		return nil, fmt.Errorf("Orchestrator.UploadBatch - %d files, max %d: %w", len(payloads), o.policy.MaxBatch, ErrTooManyFiles)
	}

	for _, payload := range payloads {
		if err := o.Check(payload); err != nil {
			return nil, err
		}
	}

	urls := make([]string, len(payloads))
	publicIDs := make([]string, len(payloads))

	var g errgroup.Group
	g.SetLimit(o.policy.MaxBatch)

	for i, payload := range payloads {
		g.Go(func() error {
			url, publicID, err := o.upload(ctx, payload, o.policy.GalleryFolder)
			if err != nil {
				return fmt.Errorf("Orchestrator.UploadBatch - %s: %w: %w", payload.Filename, ErrUploadFailed, err)
			}
			urls[i] = url
			publicIDs[i] = publicID
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		o.reportOrphans(ctx, publicIDs)
		return nil, err
	}

	o.logger.Info("batch uploaded", "files", len(urls))
	return urls, nil
}

func (o *Orchestrator) upload(ctx context.Context, payload Payload, folder string) (string, string, error) {
	callCtx, cancel := context.WithTimeout(ctx, o.policy.Timeout)
	defer cancel()

	return o.store.Upload(callCtx, payload.Data, folder)
}

func (o *Orchestrator) reportOrphans(ctx context.Context, publicIDs []string) {
	orphans := make([]string, 0, len(publicIDs))
	for _, id := range publicIDs {
		if id != "" {
			orphans = append(orphans, id)
		}
	}
	if len(orphans) == 0 {
		return
	}

	o.logger.Warn("batch failed with completed uploads", "folder", o.policy.GalleryFolder, "public_ids", orphans)
	if o.reporter == nil {
		return
	}

	// o request pode já ter sido cancelado, o aviso ainda precisa sair
	reportCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := o.reporter.ReportOrphans(reportCtx, o.policy.GalleryFolder, orphans); err != nil {
		o.logger.Error("failed to report orphan uploads", "public_ids", orphans, "error", err)
	}
}
