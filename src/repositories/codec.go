package repositories

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"casasapi/src/domain/entities"
)

// PropiedadRow é a forma plana persistida: listas viram texto e rating pode
// chegar como número ou texto, conforme a versão do schema que gravou a linha.
type PropiedadRow struct {
	ID          int64
	Titulo      string
	Categoria   string
	Precio      string
	Rating      any
	Img         string
	Galeria     string
	Ubicacion   string
	MapaEmbed   string
	Descripcion string
	Huespedes   int
	Dormitorios int
	Banios      int
	Amenidades  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func EncodeRow(p entities.Propiedad) PropiedadRow {
	return PropiedadRow{
		ID:          p.ID,
		Titulo:      p.Titulo,
		Categoria:   string(p.Categoria),
		Precio:      p.Precio,
		Rating:      EncodeRating(p.Rating),
		Img:         p.Img,
		Galeria:     EncodeList(p.Galeria),
		Ubicacion:   p.Ubicacion,
		MapaEmbed:   p.MapaEmbed,
		Descripcion: p.Descripcion,
		Huespedes:   p.Huespedes,
		Dormitorios: p.Dormitorios,
		Banios:      p.Banios,
		Amenidades:  EncodeList(p.Amenidades),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func DecodeRow(row PropiedadRow) entities.Propiedad {
	return entities.Propiedad{
		ID:          row.ID,
		Titulo:      row.Titulo,
		Categoria:   entities.Categoria(row.Categoria),
		Precio:      row.Precio,
		Rating:      DecodeRating(row.Rating),
		Img:         row.Img,
		Galeria:     DecodeList(row.Galeria),
		Ubicacion:   row.Ubicacion,
		MapaEmbed:   row.MapaEmbed,
		Descripcion: row.Descripcion,
		Huespedes:   row.Huespedes,
		Dormitorios: row.Dormitorios,
		Banios:      row.Banios,
		Amenidades:  DecodeList(row.Amenidades),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func EncodeRating(rating float64) string {
	return strconv.FormatFloat(rating, 'f', -1, 64)
}

// EncodeList serializa a lista como array JSON, mantendo a ordem. nil vira "[]".
func EncodeList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}

	encoded, err := json.Marshal(items)
	if err != nil {
		// []string sempre serializa
		return "[]"
	}
	return string(encoded)
}

// DecodeList nunca falha: uma linha malformada vira lista vazia em vez de
// bloquear a leitura das demais.
func DecodeList(text string) []string {
	return decodeList(strings.TrimSpace(text), true)
}

func decodeList(text string, allowNested bool) []string {
	if text == "" || text == "null" {
		return []string{}
	}

	if items, ok := decodeJSONArray(text); ok {
		return items
	}

	// linhas antigas gravaram a lista já serializada dentro de uma string JSON
	if allowNested && strings.HasPrefix(text, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(text), &inner); err == nil {
			return decodeList(strings.TrimSpace(inner), false)
		}
	}

	if strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}") {
		return splitCommaList(text[1:len(text)-1], true)
	}

	return splitCommaList(text, false)
}

func decodeJSONArray(text string) ([]string, bool) {
	if !strings.HasPrefix(text, "[") {
		return nil, false
	}

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(text), &elements); err != nil {
		return nil, false
	}

	items := make([]string, 0, len(elements))
	for _, element := range elements {
		element = bytes.TrimSpace(element)
		if len(element) == 0 {
			continue
		}

		switch element[0] {
		case '"':
			var s string
			if err := json.Unmarshal(element, &s); err == nil {
				items = append(items, s)
			}
		case '{', '[', 'n':
			// objetos, listas aninhadas e null não têm representação textual
		default:
			items = append(items, string(element))
		}
	}

	return items, true
}

func splitCommaList(text string, unquote bool) []string {
	items := make([]string, 0)
	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		if unquote {
			part = strings.TrimSpace(strings.Trim(part, `"`))
		}
		if part != "" {
			items = append(items, part)
		}
	}
	return items
}

// DecodeRating converte qualquer representação armazenada em número.
// Valores ausentes ou ilegíveis caem no default.
func DecodeRating(value any) float64 {
	switch v := value.(type) {
	case nil:
		return entities.DefaultRating
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int32:
		return float64(v)
	case int:
		return float64(v)
	case string:
		return parseRating(v)
	case []byte:
		return parseRating(string(v))
	case driver.Valuer:
		// pgtype.Numeric e afins
		inner, err := v.Value()
		if err != nil {
			return entities.DefaultRating
		}
		if _, nested := inner.(driver.Valuer); nested {
			return entities.DefaultRating
		}
		return DecodeRating(inner)
	case fmt.Stringer:
		return parseRating(v.String())
	default:
		return parseRating(fmt.Sprint(v))
	}
}

func parseRating(text string) float64 {
	rating, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(rating) || math.IsInf(rating, 0) {
		return entities.DefaultRating
	}
	return rating
}
