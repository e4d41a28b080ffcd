package comparer

import (
	"encoding/json"

	"github.com/google/go-cmp/cmp"
)

// JSONPayload compara corpos de mensagem ignorando a ordem das chaves.
func JSONPayload() cmp.Option {
	return cmp.FilterValues(func(x, y []byte) bool {
		return json.Valid(x) && json.Valid(y)
	}, cmp.Comparer(func(x, y []byte) bool {
		var xObj, yObj any
		if err := json.Unmarshal(x, &xObj); err != nil {
			return false
		}
		if err := json.Unmarshal(y, &yObj); err != nil {
			return false
		}
		return cmp.Equal(xObj, yObj)
	}))
}
