package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"casasapi/src/domain"
	"casasapi/src/services/events"
	"casasapi/src/test_artefacts/comparer"
	"casasapi/src/test_artefacts/fakes"
)

var _ = Describe("DomainEventPublisher", func() {
	var (
		ctx       context.Context
		sender    *fakes.MessageSender
		publisher *events.DomainEventPublisher
	)

	BeforeEach(func() {
		ctx = context.Background()
		sender = fakes.NewMessageSender()
		publisher = events.NewDomainEventPublisher(slog.New(slog.DiscardHandler), sender, "propiedades.events")
	})

	Context("when publishing a propiedad event", func() {
		It("keys the message by propiedad id and sets the headers", func() {
			// ARRANGE
			event := events.NewDomainEvent(domain.EventPropiedadCreated, domain.EventData{PropiedadID: 12, Titulo: "Loft"})

			// ACT
			err := publisher.PublishSingleEvent(ctx, event)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			batches := sender.Batches()
			Expect(batches).To(HaveLen(1))
			Expect(batches[0].Topic).To(Equal("propiedades.events"))

			message := batches[0].Messages[0]
			Expect(message.Key).To(Equal("12"))
			Expect(message.Headers).To(HaveKeyWithValue("event_type", domain.EventPropiedadCreated))
			Expect(message.Headers).To(HaveKeyWithValue("event_id", event.EventID))

			expected := fmt.Sprintf(
				`{"data":{"titulo":"Loft","propiedad_id":12},"occurred_at":%q,"event_type":"propiedad.created","event_id":%q}`,
				event.OccurredAt, event.EventID,
			)
			Expect(message.Value).To(BeComparableTo([]byte(expected), comparer.JSONPayload()))
		})
	})

	Context("when reporting orphan uploads", func() {
		It("publishes media.orphaned with the public ids", func() {
			// ACT
			err := publisher.ReportOrphans(ctx, "casas-ernestina/gallery", []string{"a", "b"})

			// ASSERT
			Expect(err).NotTo(HaveOccurred())

			var decoded domain.DomainEvent
			Expect(json.Unmarshal(sender.Batches()[0].Messages[0].Value, &decoded)).To(Succeed())
			Expect(decoded.EventType).To(Equal(domain.EventMediaOrphaned))
			Expect(decoded.Data.Folder).To(Equal("casas-ernestina/gallery"))
			Expect(decoded.Data.PublicIDs).To(Equal([]string{"a", "b"}))
		})
	})

	Context("when the sender fails", func() {
		It("wraps the error", func() {
			// ARRANGE
			sender.Err = errors.New("broker down")

			// ACT
			err := publisher.PublishSingleEvent(ctx, events.NewDomainEvent(domain.EventPropiedadDeleted, domain.EventData{PropiedadID: 1}))

			// ASSERT
			Expect(err).To(MatchError(ContainSubstring("broker down")))
		})
	})

	Context("when kafka is disabled", func() {
		It("does nothing", func() {
			// ARRANGE
			disabled := events.NewDomainEventPublisher(slog.New(slog.DiscardHandler), nil, "propiedades.events")

			// ACT
			err := disabled.ReportOrphans(ctx, "f", []string{"a"})

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
		})
	})
})
