package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/IBM/sarama"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"casasapi/src/adapters/kafka/consumers"
	"casasapi/src/domain"
	"casasapi/src/infra/kafka"
	"casasapi/src/services/events"
	"casasapi/src/test_artefacts/fakes"
)

type fakeSession struct {
	ctx    context.Context
	mu     sync.Mutex
	marked []int64
}

func (s *fakeSession) Claims() map[string][]int32 { return nil }
func (s *fakeSession) MemberID() string { return "media-janitor-test" }
func (s *fakeSession) GenerationID() int32 { return 1 }
func (s *fakeSession) MarkOffset(_ string, _ int32, _ int64, _ string) {}
func (s *fakeSession) Commit() {}
func (s *fakeSession) ResetOffset(_ string, _ int32, _ int64, _ string) {}
func (s *fakeSession) Context() context.Context { return s.ctx }
func (s *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marked = append(s.marked, msg.Offset)
}

func (s *fakeSession) Marked() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64{}, s.marked...)
}

type fakeClaim struct {
	messages chan *sarama.ConsumerMessage
}

func (c *fakeClaim) Topic() string { return "propiedades.events" }
func (c *fakeClaim) Partition() int32 { return 0 }
func (c *fakeClaim) InitialOffset() int64 { return 0 }
func (c *fakeClaim) HighWaterMarkOffset() int64 { return 0 }
func (c *fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.messages }

func orphanedMessage(offset int64, publicID string) *sarama.ConsumerMessage {
	event := events.NewDomainEvent(domain.EventMediaOrphaned, domain.EventData{
		Folder:    "casas-ernestina/gallery",
		PublicIDs: []string{publicID},
	})
	value, err := json.Marshal(event)
	Expect(err).NotTo(HaveOccurred())

	return &sarama.ConsumerMessage{
		Topic:     "propiedades.events",
		Offset:    offset,
		Key:       []byte(event.EventID),
		Value:     value,
		Headers:   []*sarama.RecordHeader{{Key: []byte("event_type"), Value: []byte(domain.EventMediaOrphaned)}},
		Timestamp: time.Now(),
	}
}

var _ = Describe("consumerGroupHandler", func() {
	var (
		ctx      context.Context
		cancel   context.CancelFunc
		session  *fakeSession
		claim    *fakeClaim
		store    *fakes.ObjectStore
		attempts atomic.Int32
		handler  sarama.ConsumerGroupHandler
		result   chan error
	)

	BeforeEach(func() {
		ctx, cancel = context.WithCancel(context.Background())
		DeferCleanup(cancel)

		session = &fakeSession{ctx: ctx}
		claim = &fakeClaim{messages: make(chan *sarama.ConsumerMessage, 4)}
		store = fakes.NewObjectStore()
		attempts.Store(0)

		logger := slog.New(slog.DiscardHandler)
		orphans := consumers.NewMediaOrphansConsumer(logger, store, time.Second)
		handler = kafka.NewConsumerGroupHandler(logger, func(messages []kafka.Message) error {
			return orphans.HandleMessages(ctx, messages)
		}, 1, 10*time.Millisecond)

		result = make(chan error, 1)
	})

	consume := func() {
		go func() {
			defer GinkgoRecover()
			result <- handler.ConsumeClaim(session, claim)
		}()
	}

	Context("when destroying an orphan fails and then recovers", func() {
		It("retries the same batch before marking anything after it", func() {
			// ARRANGE
			store.FailDestroyWhen = func(publicID string) error {
				if publicID == "casas-ernestina/gallery/a" && attempts.Add(1) <= 2 {
					return errors.New("cloudinary timeout")
				}
				return nil
			}
			claim.messages <- orphanedMessage(10, "casas-ernestina/gallery/a")
			claim.messages <- orphanedMessage(11, "casas-ernestina/gallery/b")

			// ACT
			consume()

			// ASSERT
			Eventually(session.Marked).Should(Equal([]int64{10, 11}))
			Expect(store.Destroyed()).To(Equal([]string{"casas-ernestina/gallery/a", "casas-ernestina/gallery/b"}))
			Expect(attempts.Load()).To(Equal(int32(3)))

			close(claim.messages)
			Eventually(result).Should(Receive(BeNil()))
		})
	})

	Context("when the session ends while the batch still fails", func() {
		It("returns an error and leaves the offsets unmarked", func() {
			// ARRANGE
			store.FailDestroyWhen = func(publicID string) error {
				attempts.Add(1)
				return errors.New("cloudinary down")
			}
			claim.messages <- orphanedMessage(10, "casas-ernestina/gallery/a")
			claim.messages <- orphanedMessage(11, "casas-ernestina/gallery/b")

			consume()
			Eventually(attempts.Load).Should(BeNumerically(">=", 2))

			// ACT
			cancel()

			// ASSERT
			var err error
			Eventually(result).Should(Receive(&err))
			Expect(err).To(MatchError(ContainSubstring("left unmarked")))
			Expect(session.Marked()).To(BeEmpty())
			Expect(store.Destroyed()).To(BeEmpty())
		})
	})
})
