package consumers_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"casasapi/src/adapters/kafka/consumers"
	"casasapi/src/domain"
	"casasapi/src/infra/kafka"
	"casasapi/src/services/events"
	"casasapi/src/test_artefacts/fakes"
)

func eventMessage(event domain.DomainEvent) kafka.Message {
	value, err := json.Marshal(event)
	Expect(err).NotTo(HaveOccurred())
	return kafka.Message{
		Key:     event.EventID,
		Value:   value,
		Headers: map[string]string{"event_type": event.EventType},
	}
}

var _ = Describe("MediaOrphansConsumer", func() {
	var (
		ctx      context.Context
		store    *fakes.ObjectStore
		consumer *consumers.MediaOrphansConsumer
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = fakes.NewObjectStore()
		consumer = consumers.NewMediaOrphansConsumer(slog.New(slog.DiscardHandler), store, time.Second)
	})

	Context("when a media.orphaned event arrives", func() {
		It("destroys every public id", func() {
			// ARRANGE
			messages := []kafka.Message{
				eventMessage(events.NewDomainEvent(domain.EventMediaOrphaned, domain.EventData{
					Folder:    "casas-ernestina/gallery",
					PublicIDs: []string{"casas-ernestina/gallery/a", "casas-ernestina/gallery/b"},
				})),
			}

			// ACT
			err := consumer.HandleMessages(ctx, messages)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(store.Destroyed()).To(Equal([]string{"casas-ernestina/gallery/a", "casas-ernestina/gallery/b"}))
		})
	})

	Context("when other events share the topic", func() {
		It("ignores them and skips malformed payloads", func() {
			// ARRANGE
			messages := []kafka.Message{
				eventMessage(events.NewDomainEvent(domain.EventPropiedadCreated, domain.EventData{PropiedadID: 1})),
				{Key: "x", Value: []byte("{not json")},
			}

			// ACT
			err := consumer.HandleMessages(ctx, messages)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(store.Destroyed()).To(BeEmpty())
		})
	})
})
