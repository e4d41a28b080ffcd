package stubs

import (
	"fmt"
	"time"

	"casasapi/src/domain/entities"

	"github.com/brianvoe/gofakeit/v6"
)

type PropiedadStub struct {
	propiedad entities.Propiedad
}

func NewPropiedadStub() PropiedadStub {
	now := time.Now().UTC().Truncate(time.Microsecond)

	propiedad := entities.Propiedad{
		ID:          gofakeit.Int64(),
		Titulo:      gofakeit.Sentence(4),
		Categoria:   entities.Categorias[gofakeit.Number(0, len(entities.Categorias)-1)],
		Precio:      fmt.Sprintf("$%d MXN", gofakeit.Number(500, 9000)),
		Rating:      float64(gofakeit.Number(0, 50)) / 10,
		Img:         "https://res.cloudinary.com/demo/" + gofakeit.UUID() + ".jpg",
		Galeria:     []string{"https://res.cloudinary.com/demo/" + gofakeit.UUID() + ".jpg"},
		Ubicacion:   gofakeit.City(),
		MapaEmbed:   "https://www.google.com/maps/embed?pb=" + gofakeit.LetterN(12),
		Descripcion: gofakeit.Paragraph(1, 3, 12, " "),
		Huespedes:   gofakeit.Number(1, 12),
		Dormitorios: gofakeit.Number(0, 6),
		Banios:      gofakeit.Number(0, 4),
		Amenidades:  []string{gofakeit.Word(), gofakeit.Word()},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	return PropiedadStub{propiedad: propiedad}
}

func (ps PropiedadStub) WithID(id int64) PropiedadStub {
	ps.propiedad.ID = id
	return ps
}

func (ps PropiedadStub) WithTitulo(titulo string) PropiedadStub {
	ps.propiedad.Titulo = titulo
	return ps
}

func (ps PropiedadStub) WithCategoria(categoria entities.Categoria) PropiedadStub {
	ps.propiedad.Categoria = categoria
	return ps
}

func (ps PropiedadStub) WithGaleria(galeria ...string) PropiedadStub {
	ps.propiedad.Galeria = galeria
	return ps
}

func (ps PropiedadStub) WithAmenidades(amenidades ...string) PropiedadStub {
	ps.propiedad.Amenidades = amenidades
	return ps
}

func (ps PropiedadStub) Get() entities.Propiedad {
	return ps.propiedad
}
