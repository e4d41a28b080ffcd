package fakes

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"
)

// ObjectStore simula o Cloudinary. A URL e o public id derivam do conteúdo,
// então o teste consegue calcular o resultado esperado com ObjectKey.
type ObjectStore struct {
	mu        sync.Mutex
	FailWhen  func(data []byte) error
	Delay     time.Duration

	// FailDestroyWhen faz Destroy falhar; o public id só entra em Destroyed quando não há erro.
	FailDestroyWhen func(publicID string) error

	uploads   []string
	destroyed []string
}

func NewObjectStore() *ObjectStore {
	return &ObjectStore{}
}

func ObjectKey(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))[:12]
}

func ObjectURL(folder string, data []byte) string {
	return fmt.Sprintf("https://res.cloudinary.test/%s/%s.png", folder, ObjectKey(data))
}

func (s *ObjectStore) Upload(ctx context.Context, data []byte, folder string) (string, string, error) {
	if s.FailWhen != nil {
		if err := s.FailWhen(data); err != nil {
			return "", "", err
		}
	}

	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return "", "", ctx.Err()
		}
	}

	publicID := folder + "/" + ObjectKey(data)

	s.mu.Lock()
	s.uploads = append(s.uploads, publicID)
	s.mu.Unlock()

	return ObjectURL(folder, data), publicID, nil
}

func (s *ObjectStore) Destroy(_ context.Context, publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailDestroyWhen != nil {
		if err := s.FailDestroyWhen(publicID); err != nil {
			return err
		}
	}
	s.destroyed = append(s.destroyed, publicID)
	return nil
}

// Uploads lista os public ids concluídos.
func (s *ObjectStore) Uploads() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.uploads...)
}

func (s *ObjectStore) Destroyed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.destroyed...)
}

type OrphanReport struct {
	Folder    string
	PublicIDs []string
}

type OrphanReporter struct {
	mu      sync.Mutex
	reports []OrphanReport
}

func NewOrphanReporter() *OrphanReporter {
	return &OrphanReporter{}
}

func (r *OrphanReporter) ReportOrphans(_ context.Context, folder string, publicIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, OrphanReport{Folder: folder, PublicIDs: append([]string{}, publicIDs...)})
	return nil
}

func (r *OrphanReporter) Reports() []OrphanReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]OrphanReport{}, r.reports...)
}
