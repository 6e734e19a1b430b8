package kafka

import (
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap/zaptest"

	"github.com/arklim/orderflow-catalog/internal/infra/config"
)

func newTestProducer(t *testing.T, asyncProducer sarama.AsyncProducer) *Producer {
	t.Helper()

	p := &Producer{
		producer: asyncProducer,
		logger:   zaptest.NewLogger(t),
		cfg:      config.KafkaSettings{},
		errChan:  make(chan error, 256),
		done:     make(chan struct{}),
	}
	go p.handleErrors()
	return p
}

func TestProducerForwardsErrors(t *testing.T) {
	asyncProducer := newFakeAsyncProducer()
	producer := newTestProducer(t, asyncProducer)

	brokerErr := errors.New("broker unreachable")
	asyncProducer.errors <- &sarama.ProducerError{
		Msg: &sarama.ProducerMessage{Topic: "catalog.product.created"},
		Err: brokerErr,
	}

	select {
	case err := <-producer.Errors():
		if !errors.Is(err, brokerErr) {
			t.Fatalf("unexpected forwarded error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for forwarded producer error")
	}
}

func TestProducerCloseClosesErrorChannel(t *testing.T) {
	asyncProducer := newFakeAsyncProducer()
	producer := newTestProducer(t, asyncProducer)

	asyncProducer.errors <- &sarama.ProducerError{
		Msg: &sarama.ProducerMessage{Topic: "catalog.product.deleted"},
		Err: errors.New("broker unreachable"),
	}

	if err := producer.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	// Errors() stays readable until the monitor goroutine drains and
	// closes it; a receive must terminate instead of hanging or panicking.
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-producer.Errors():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("error channel was not closed after Close")
		}
	}
}

func TestTopicName(t *testing.T) {
	cases := []struct {
		prefix    string
		eventType string
		want      string
	}{
		{"", "catalog.product.created", "catalog.product.created"},
		{"orderflow", "catalog.product.created", "orderflow.catalog.product.created"},
		{"catalog", "catalog.stock.reserved", "catalog.stock.reserved"},
	}

	for _, tc := range cases {
		p := &Producer{cfg: config.KafkaSettings{TopicPrefix: tc.prefix}}
		if got := p.TopicName(tc.eventType); got != tc.want {
			t.Fatalf("prefix %q, event %q: expected %q, got %q", tc.prefix, tc.eventType, tc.want, got)
		}
	}
}
