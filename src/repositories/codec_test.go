package repositories_test

import (
	"database/sql/driver"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"casasapi/src/domain/entities"
	"casasapi/src/repositories"
	"casasapi/src/test_artefacts/stubs"

	"github.com/google/go-cmp/cmp/cmpopts"
)

type numericValuer struct{ text string }

func (n numericValuer) Value() (driver.Value, error) { return n.text, nil }

var _ = Describe("Codec", func() {
	Context("when a record is encoded and decoded", func() {
		It("returns the same record", func() {
			// ARRANGE
			propiedad := stubs.NewPropiedadStub().WithGaleria("https://a/1.jpg", "https://a/2.jpg", "https://a/1.jpg").Get()

			// ACT
			decoded := repositories.DecodeRow(repositories.EncodeRow(propiedad))

			// ASSERT
			Expect(decoded).To(BeComparableTo(propiedad))
		})

		It("keeps empty lists as empty lists", func() {
			// ARRANGE
			propiedad := stubs.NewPropiedadStub().WithGaleria().WithAmenidades().Get()

			// ACT
			row := repositories.EncodeRow(propiedad)
			decoded := repositories.DecodeRow(row)

			// ASSERT
			Expect(row.Galeria).To(Equal("[]"))
			Expect(row.Amenidades).To(Equal("[]"))
			Expect(decoded).To(BeComparableTo(propiedad, cmpopts.EquateEmpty()))
			Expect(decoded.Galeria).NotTo(BeNil())
		})
	})

	DescribeTable("DecodeList",
		func(stored string, expected []string) {
			Expect(repositories.DecodeList(stored)).To(Equal(expected))
		},
		Entry("empty text", "", []string{}),
		Entry("null", "null", []string{}),
		Entry("json array", `["wifi","piscina"]`, []string{"wifi", "piscina"}),
		Entry("json array with scalars", `["wifi", 3, true, null, {"a":1}]`, []string{"wifi", "3", "true"}),
		Entry("double encoded array", `"[\"wifi\",\"cocina\"]"`, []string{"wifi", "cocina"}),
		Entry("comma separated", "wifi, piscina ,, cocina", []string{"wifi", "piscina", "cocina"}),
		Entry("postgres array literal", `{"aire acondicionado",wifi}`, []string{"aire acondicionado", "wifi"}),
		Entry("broken json", `["wifi"`, []string{`["wifi"`}),
		Entry("single value", "wifi", []string{"wifi"}),
		Entry("only separators", " , ,", []string{}),
	)

	DescribeTable("DecodeRating",
		func(stored any, expected float64) {
			Expect(repositories.DecodeRating(stored)).To(Equal(expected))
		},
		Entry("nil", nil, entities.DefaultRating),
		Entry("float", 4.5, 4.5),
		Entry("float32", float32(3.5), 3.5),
		Entry("int64", int64(4), 4.0),
		Entry("text", " 4.8 ", 4.8),
		Entry("bytes", []byte("3.2"), 3.2),
		Entry("unparsable text", "cinco", entities.DefaultRating),
		Entry("NaN text", "NaN", entities.DefaultRating),
		Entry("driver valuer", numericValuer{text: "4.1"}, 4.1),
	)

	It("encodes ratings without trailing zeros", func() {
		Expect(repositories.EncodeRating(5)).To(Equal("5"))
		Expect(repositories.EncodeRating(4.5)).To(Equal("4.5"))
	})
})
