package validation_test

import (
	"encoding/json"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"casasapi/src/domain/entities"
	"casasapi/src/services/validation"
)

func validCandidate() validation.Candidate {
	return validation.Candidate{
		Titulo:      "Casa del Mar",
		Categoria:   "Playa",
		Precio:      "1,200",
		Ubicacion:   "Oaxaca",
		Img:         "https://x/y.jpg",
		Descripcion: "Vista al mar",
		MapaEmbed:   "https://www.google.com/maps/embed?pb=1",
	}
}

func asValidationError(err error) *validation.Error {
	var validationErr *validation.Error
	Expect(errors.As(err, &validationErr)).To(BeTrue())
	return validationErr
}

var _ = Describe("Pipeline", func() {
	var pipeline *validation.Pipeline

	BeforeEach(func() {
		pipeline = validation.NewPipeline(validation.NewEmbedPolicy(nil))
	})

	Context("when the candidate only has the required fields", func() {
		It("applies the defaults", func() {
			// ACT
			result, err := pipeline.Validate(validCandidate())

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Propiedad.Titulo).To(Equal("Casa del Mar"))
			Expect(result.Propiedad.Categoria).To(Equal(entities.CategoriaPlaya))
			Expect(result.Propiedad.Rating).To(Equal(5.0))
			Expect(result.Propiedad.Huespedes).To(Equal(1))
			Expect(result.Propiedad.Dormitorios).To(Equal(0))
			Expect(result.Propiedad.Banios).To(Equal(0))
			Expect(result.Propiedad.Galeria).To(Equal([]string{}))
			Expect(result.Propiedad.Amenidades).To(Equal([]string{}))
			Expect(result.Warnings).To(BeEmpty())
		})

		It("is deterministic", func() {
			// ARRANGE
			candidate := validCandidate()
			candidate.Galeria = []any{"https://a/1.jpg", "http://a/2.jpg"}

			// ACT
			first, firstErr := pipeline.Validate(candidate)
			second, secondErr := pipeline.Validate(candidate)

			// ASSERT
			Expect(firstErr).NotTo(HaveOccurred())
			Expect(secondErr).NotTo(HaveOccurred())
			Expect(first).To(Equal(second))
		})
	})

	Context("when a hard rule is violated", func() {
		DescribeTable("returns the field and reason",
			func(mutate func(c *validation.Candidate), field string, reason string) {
				// ARRANGE
				candidate := validCandidate()
				mutate(&candidate)

				// ACT
				_, err := pipeline.Validate(candidate)

				// ASSERT
				validationErr := asValidationError(err)
				Expect(validationErr.Field).To(Equal(field))
				Expect(validationErr.Reason).To(Equal(reason))
			},
			Entry("blank titulo", func(c *validation.Candidate) { c.Titulo = "   " }, "titulo", validation.ReasonRequired),
			Entry("long titulo", func(c *validation.Candidate) { c.Titulo = strings.Repeat("a", 201) }, "titulo", validation.ReasonTooLong),
			Entry("unknown categoria", func(c *validation.Candidate) { c.Categoria = "Montaña" }, "categoria", validation.ReasonInvalidEnum),
			Entry("blank descripcion", func(c *validation.Candidate) { c.Descripcion = "" }, "descripcion", validation.ReasonRequired),
			Entry("long descripcion", func(c *validation.Candidate) { c.Descripcion = strings.Repeat("a", 5001) }, "descripcion", validation.ReasonTooLong),
			Entry("blank precio", func(c *validation.Candidate) { c.Precio = " " }, "precio", validation.ReasonRequired),
			Entry("blank ubicacion", func(c *validation.Candidate) { c.Ubicacion = "" }, "ubicacion", validation.ReasonRequired),
			Entry("blank img", func(c *validation.Candidate) { c.Img = "" }, "img", validation.ReasonRequired),
			Entry("rating above 5", func(c *validation.Candidate) { c.Rating = 7.5 }, "rating", validation.ReasonOutOfRange),
			Entry("negative rating text", func(c *validation.Candidate) { c.Rating = "-1" }, "rating", validation.ReasonOutOfRange),
			Entry("huespedes too large", func(c *validation.Candidate) { c.Huespedes = float64(99999) }, "huespedes", validation.ReasonOutOfRange),
			Entry("huespedes zero", func(c *validation.Candidate) { c.Huespedes = float64(0) }, "huespedes", validation.ReasonOutOfRange),
			Entry("huespedes fractional", func(c *validation.Candidate) { c.Huespedes = 2.5 }, "huespedes", validation.ReasonNotAnInteger),
			Entry("huespedes text", func(c *validation.Candidate) { c.Huespedes = "muchos" }, "huespedes", validation.ReasonNotANumber),
			Entry("dormitorios too large", func(c *validation.Candidate) { c.Dormitorios = json.Number("501") }, "dormitorios", validation.ReasonOutOfRange),
			Entry("banios negative", func(c *validation.Candidate) { c.Banios = "-2" }, "banios", validation.ReasonOutOfRange),
			Entry("galeria not a list", func(c *validation.Candidate) { c.Galeria = "https://a/1.jpg" }, "galeria", validation.ReasonNotAList),
			Entry("galeria too long", func(c *validation.Candidate) { c.Galeria = make([]any, 101) }, "galeria", validation.ReasonTooManyEntries),
			Entry("amenidades too long", func(c *validation.Candidate) { c.Amenidades = make([]any, 51) }, "amenidades", validation.ReasonTooManyEntries),
			Entry("amenidades object", func(c *validation.Candidate) { c.Amenidades = map[string]any{"wifi": true} }, "amenidades", validation.ReasonInvalidType),
		)

		It("names the invalid categoria in the message", func() {
			// ARRANGE
			candidate := validCandidate()
			candidate.Categoria = "Montaña"

			// ACT
			_, err := pipeline.Validate(candidate)

			// ASSERT
			Expect(asValidationError(err).Message).To(ContainSubstring("Montaña"))
		})

		It("stops at the first violation", func() {
			// ARRANGE
			candidate := validCandidate()
			candidate.Titulo = ""
			candidate.Huespedes = float64(99999)

			// ACT
			_, err := pipeline.Validate(candidate)

			// ASSERT
			Expect(asValidationError(err).Field).To(Equal("titulo"))
		})
	})

	Context("when numeric fields come in other shapes", func() {
		It("accepts numeric text and boundary values", func() {
			// ARRANGE
			candidate := validCandidate()
			candidate.Rating = "0"
			candidate.Huespedes = "10000"
			candidate.Dormitorios = json.Number("500")
			candidate.Banios = float64(0)

			// ACT
			result, err := pipeline.Validate(candidate)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Propiedad.Rating).To(Equal(0.0))
			Expect(result.Propiedad.Huespedes).To(Equal(10000))
			Expect(result.Propiedad.Dormitorios).To(Equal(500))
			Expect(result.Propiedad.Banios).To(Equal(0))
		})

		It("falls back to the default rating when it cannot be parsed", func() {
			// ARRANGE
			candidate := validCandidate()
			candidate.Rating = "excelente"

			// ACT
			result, err := pipeline.Validate(candidate)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Propiedad.Rating).To(Equal(entities.DefaultRating))
		})
	})

	Context("when gallery entries are not usable", func() {
		It("drops them and reports warnings", func() {
			// ARRANGE
			candidate := validCandidate()
			candidate.Galeria = []any{
				"https://a/1.jpg",
				"http://a/2.jpg",
				"data:image/png;base64,AAAA",
				"no es url",
				float64(3),
			}

			// ACT
			result, err := pipeline.Validate(candidate)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Propiedad.Galeria).To(Equal([]string{"https://a/1.jpg", "data:image/png;base64,AAAA"}))
			Expect(result.Warnings).To(HaveLen(3))
		})
	})

	Context("when a gallery url has an uppercase scheme", func() {
		It("keeps it as sent", func() {
			// ARRANGE
			candidate := validCandidate()
			candidate.Galeria = []any{"HTTPS://res.cloudinary.com/a.jpg", "Https://res.cloudinary.com/b.jpg", "HTTP://res.cloudinary.com/c.jpg"}

			// ACT
			result, err := pipeline.Validate(candidate)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Propiedad.Galeria).To(Equal([]string{"HTTPS://res.cloudinary.com/a.jpg", "Https://res.cloudinary.com/b.jpg"}))
			Expect(result.Warnings).To(HaveLen(1))
		})
	})

	Context("when amenidades is a comma separated string", func() {
		It("splits it", func() {
			// ARRANGE
			candidate := validCandidate()
			candidate.Amenidades = "wifi, piscina,, cocina "

			// ACT
			result, err := pipeline.Validate(candidate)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Propiedad.Amenidades).To(Equal([]string{"wifi", "piscina", "cocina"}))
		})
	})

	Context("when mapa_embed is handled", func() {
		It("warns when it is missing", func() {
			// ARRANGE
			candidate := validCandidate()
			candidate.MapaEmbed = ""

			// ACT
			result, err := pipeline.Validate(candidate)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Propiedad.MapaEmbed).To(BeEmpty())
			Expect(result.Warnings).To(HaveLen(1))
		})

		It("keeps only the iframe src", func() {
			// ARRANGE
			candidate := validCandidate()
			candidate.MapaEmbed = `<iframe src="https://www.google.com/maps/embed?pb=abc" width="600" height="450"></iframe>`

			// ACT
			result, err := pipeline.Validate(candidate)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Propiedad.MapaEmbed).To(Equal("https://www.google.com/maps/embed?pb=abc"))
			Expect(result.Warnings).To(BeEmpty())
		})

		It("drops markup pointing to other hosts", func() {
			// ARRANGE
			candidate := validCandidate()
			candidate.MapaEmbed = `<iframe src="https://evil.example/embed"></iframe><script>alert(1)</script>`

			// ACT
			result, err := pipeline.Validate(candidate)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Propiedad.MapaEmbed).To(BeEmpty())
			Expect(result.Warnings).To(HaveLen(1))
		})
	})
})
