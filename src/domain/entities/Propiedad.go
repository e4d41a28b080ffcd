package entities

import "time"

type Categoria string

const (
	CategoriaPlaya  Categoria = "Playa"
	CategoriaBosque Categoria = "Bosque"
	CategoriaCiudad Categoria = "Ciudad"
)

// Categorias lista os valores aceitos, na ordem em que aparecem nas mensagens de erro.
var Categorias = []Categoria{CategoriaPlaya, CategoriaBosque, CategoriaCiudad}

const DefaultRating = 5.0

// É um anúncio de aluguel.
type Propiedad struct {
	ID          int64     `json:"id"`
	Titulo      string    `json:"titulo"`
	Categoria   Categoria `json:"categoria"`
	Precio      string    `json:"precio"`
	Rating      float64   `json:"rating"`
	Img         string    `json:"img"`
	Galeria     []string  `json:"galeria"`
	Ubicacion   string    `json:"ubicacion"`
	MapaEmbed   string    `json:"mapa_embed"`
	Descripcion string    `json:"descripcion"`
	Huespedes   int       `json:"huespedes"`
	Dormitorios int       `json:"dormitorios"`
	Banios      int       `json:"banios"`
	Amenidades  []string  `json:"amenidades"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
