package validation_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"casasapi/src/services/validation"
)

var _ = Describe("EmbedPolicy", func() {
	policy := validation.NewEmbedPolicy(nil)

	DescribeTable("Extract",
		func(raw string, expected string, ok bool) {
			// ACT
			src, accepted := policy.Extract(raw)

			// ASSERT
			Expect(accepted).To(Equal(ok))
			Expect(src).To(Equal(expected))
		},
		Entry("bare google url", "https://www.google.com/maps/embed?pb=1", "https://www.google.com/maps/embed?pb=1", true),
		Entry("openstreetmap subdomain", "https://www.openstreetmap.org/export/embed.html", "https://www.openstreetmap.org/export/embed.html", true),
		Entry("plain http", "http://www.google.com/maps/embed", "", false),
		Entry("lookalike host", "https://google.com.evil.example/maps", "", false),
		Entry("iframe without src", "<iframe></iframe>", "", false),
		Entry("javascript scheme", "javascript:alert(1)", "", false),
	)

	It("uses the configured hosts", func() {
		// ARRANGE
		custom := validation.NewEmbedPolicy([]string{"mapas.example"})

		// ACT
		_, googleAccepted := custom.Extract("https://www.google.com/maps/embed")
		src, customAccepted := custom.Extract("https://tiles.mapas.example/x")

		// ASSERT
		Expect(googleAccepted).To(BeFalse())
		Expect(customAccepted).To(BeTrue())
		Expect(src).To(Equal("https://tiles.mapas.example/x"))
	})
})
