package comparer

import (
	"time"

	"casasapi/src/domain/entities"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func IgnoreFieldsFor[T any](fields ...string) cmp.Option {
	var t T
	return cmpopts.IgnoreFields(t, fields...)
}

// Propiedad compara ignorando o id atribuído pelo store; listas nil e vazias são iguais.
func Propiedad(tolerance time.Duration) cmp.Option {
	return cmp.Options{
		IgnoreFieldsFor[entities.Propiedad]("ID"),
		TimeWithinTolerance(tolerance),
		cmpopts.EquateEmpty(),
	}
}
