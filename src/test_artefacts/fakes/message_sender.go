package fakes

import (
	"sync"

	"casasapi/src/infra/kafka"
)

type SentBatch struct {
	Topic    string
	Messages []kafka.Message
}

// MessageSender captura o que seria publicado no Kafka.
type MessageSender struct {
	mu      sync.Mutex
	batches []SentBatch
	Err     error
}

func NewMessageSender() *MessageSender {
	return &MessageSender{}
}

func (s *MessageSender) Send(messages []kafka.Message, topic string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.batches = append(s.batches, SentBatch{Topic: topic, Messages: append([]kafka.Message{}, messages...)})
	return nil
}

func (s *MessageSender) Batches() []SentBatch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SentBatch{}, s.batches...)
}
