package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap/zaptest"

	"github.com/arklim/orderflow-catalog/internal/core/domain"
	"github.com/arklim/orderflow-catalog/internal/infra/config"
)

type fakeAsyncProducer struct {
	input  chan *sarama.ProducerMessage
	errors chan *sarama.ProducerError
}

func newFakeAsyncProducer() *fakeAsyncProducer {
	return &fakeAsyncProducer{
		input:  make(chan *sarama.ProducerMessage, 1),
		errors: make(chan *sarama.ProducerError, 1),
	}
}

func (f *fakeAsyncProducer) AsyncClose() {}

func (f *fakeAsyncProducer) Close() error { return nil }

func (f *fakeAsyncProducer) Input() chan<- *sarama.ProducerMessage { return f.input }

func (f *fakeAsyncProducer) Successes() <-chan *sarama.ProducerMessage { return nil }

func (f *fakeAsyncProducer) Errors() <-chan *sarama.ProducerError { return f.errors }

func (f *fakeAsyncProducer) IsTransactional() bool { return false }

func (f *fakeAsyncProducer) BeginTxn() error { return nil }

func (f *fakeAsyncProducer) CommitTxn() error { return nil }

func (f *fakeAsyncProducer) AbortTxn() error { return nil }

func (f *fakeAsyncProducer) AddOffsetsToTxn(offsets map[string][]*sarama.PartitionOffsetMetadata, groupID string) error {
	return nil
}

func (f *fakeAsyncProducer) AddMessageToTxn(msg *sarama.ConsumerMessage, groupID string, metadata *string) error {
	return nil
}

func (f *fakeAsyncProducer) TxnStatus() sarama.ProducerTxnStatusFlag {
	return sarama.ProducerTxnStatusFlag(0)
}

func TestPublishStockReserved(t *testing.T) {
	asyncProducer := newFakeAsyncProducer()

	producer := &Producer{
		producer: asyncProducer,
		logger:   zaptest.NewLogger(t),
		cfg: config.KafkaSettings{
			TopicPrefix: "orderflow",
		},
		errChan: make(chan error, 1),
		done:    make(chan struct{}),
	}

	publisher := NewEventPublisher(producer, config.AppSettings{
		Name: "orderflow-catalog",
		Env:  "test",
	}, zaptest.NewLogger(t))

	reservedAt := time.Date(2025, 10, 31, 12, 0, 0, 0, time.UTC)
	event := domain.StockReservedEvent{
		EventID:    "event-123",
		ProductID:  42,
		Quantity:   3,
		ReservedAt: reservedAt,
	}

	if err := publisher.PublishStockReserved(context.Background(), event); err != nil {
		t.Fatalf("PublishStockReserved returned error: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		if msg.Topic != "orderflow.catalog.stock.reserved" {
			t.Fatalf("unexpected topic: %s", msg.Topic)
		}

		bytes, err := msg.Value.Encode()
		if err != nil {
			t.Fatalf("Value.Encode returned error: %v", err)
		}

		var envelope map[string]any
		if err := json.Unmarshal(bytes, &envelope); err != nil {
			t.Fatalf("failed to unmarshal envelope: %v", err)
		}

		if got := envelope["event_type"]; got != "catalog.stock.reserved" {
			t.Fatalf("unexpected event_type: %v", got)
		}
		if got := envelope["event_id"]; got != event.EventID {
			t.Fatalf("unexpected event_id: %v", got)
		}
		if got := envelope["version"]; got != "1.0" {
			t.Fatalf("unexpected version: %v", got)
		}

		payload, ok := envelope["payload"].(map[string]any)
		if !ok {
			t.Fatalf("payload not a map: %T", envelope["payload"])
		}
		if got := payload["product_id"]; got != float64(event.ProductID) {
			t.Fatalf("unexpected product_id: %v", got)
		}
		if got := payload["quantity"]; got != float64(event.Quantity) {
			t.Fatalf("unexpected quantity: %v", got)
		}

		metadata, ok := envelope["metadata"].(map[string]any)
		if !ok {
			t.Fatalf("metadata not a map: %T", envelope["metadata"])
		}
		if got := metadata["service"]; got != "orderflow-catalog" {
			t.Fatalf("unexpected service metadata: %v", got)
		}
	default:
		t.Fatal("expected a message on the producer input channel")
	}
}

func TestPublishProductCreated_GeneratesEventID(t *testing.T) {
	asyncProducer := newFakeAsyncProducer()

	producer := &Producer{
		producer: asyncProducer,
		logger:   zaptest.NewLogger(t),
		cfg:      config.KafkaSettings{},
		errChan:  make(chan error, 1),
		done:     make(chan struct{}),
	}

	publisher := NewEventPublisher(producer, config.AppSettings{Name: "orderflow-catalog", Env: "test"}, zaptest.NewLogger(t))

	event := domain.ProductCreatedEvent{
		ProductID:  7,
		Name:       "Keyboard",
		Price:      59.90,
		Stock:      10,
		CategoryID: 3,
		CreatedAt:  time.Now().UTC(),
	}

	if err := publisher.PublishProductCreated(context.Background(), event); err != nil {
		t.Fatalf("PublishProductCreated returned error: %v", err)
	}

	msg := <-asyncProducer.input
	if msg.Topic != "catalog.product.created" {
		t.Fatalf("expected unprefixed topic, got %s", msg.Topic)
	}

	bytes, err := msg.Value.Encode()
	if err != nil {
		t.Fatalf("Value.Encode returned error: %v", err)
	}

	var envelope map[string]any
	if err := json.Unmarshal(bytes, &envelope); err != nil {
		t.Fatalf("failed to unmarshal envelope: %v", err)
	}

	id, ok := envelope["event_id"].(string)
	if !ok || id == "" {
		t.Fatalf("expected generated event_id, got %v", envelope["event_id"])
	}
}
