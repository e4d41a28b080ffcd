package domain

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

var ErrPropiedadNotFound = errors.New("Propiedad no encontrada")

// StorageError marca qualquer falha de I/O de persistência. Carrega o stack
// do ponto onde foi criado para o modo de desenvolvimento.
type StorageError struct {
	Op  string
	err error
}

func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, err: pkgerrors.WithStack(err)}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.err)
}

func (e *StorageError) Unwrap() error {
	return e.err
}

// Format repassa %+v para o erro interno, preservando o stack trace.
func (e *StorageError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%s: %+v", e.Op, e.err)
		return
	}
	fmt.Fprint(s, e.Error())
}

func IsStorageError(err error) bool {
	var storageErr *StorageError
	return errors.As(err, &storageErr)
}

// ############################################################
// ################ EVENTOS DE DOMÍNIO ########################
// ############################################################

const (
	EventPropiedadCreated = "propiedad.created"
	EventPropiedadUpdated = "propiedad.updated"
	EventPropiedadDeleted = "propiedad.deleted"
	EventMediaOrphaned    = "media.orphaned"
)

// DomainEvent é o envelope publicado no tópico de eventos.
type DomainEvent struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	OccurredAt string    `json:"occurred_at"`
	Data       EventData `json:"data"`
}

// EventData carrega o identificador afetado. PublicIDs só aparece em media.orphaned.
type EventData struct {
	PropiedadID int64    `json:"propiedad_id,omitempty"`
	Titulo      string   `json:"titulo,omitempty"`
	PublicIDs   []string `json:"public_ids,omitempty"`
	Folder      string   `json:"folder,omitempty"`
}
