package repository

import (
	"context"

	"github.com/Swigstan1810/Heights-sub002/internal/domain/models"
	"github.com/Swigstan1810/Heights-sub002/internal/domain/repository"
	pkgkafka "github.com/Swigstan1810/Heights-sub002/pkg/kafka"
)

// KafkaEventPublisher emits one event per processed query, keyed by intent so
// per-intent consumers see events in order.
type KafkaEventPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaEventPublisher(producer *pkgkafka.Producer, topic string) repository.EventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic}
}

func (p *KafkaEventPublisher) PublishQueryEvent(ctx context.Context, resp *models.AIResponse) error {
	if resp == nil {
		return nil
	}
	intent := "unknown"
	symbol := ""
	if resp.Metadata.Classification != nil {
		intent = string(resp.Metadata.Classification.Intent)
		symbol = resp.Metadata.Classification.AssetSymbol
	}
	return p.producer.Publish(ctx, p.topic, []byte(intent), map[string]interface{}{
		"id":         resp.ID,
		"intent":     intent,
		"symbol":     symbol,
		"sources":    resp.Metadata.Sources,
		"confidence": resp.Metadata.Confidence,
		"freshness":  resp.Metadata.DataFreshness,
		"latency_ms": resp.Metadata.ProcessingTime.Milliseconds(),
		"ts":         resp.Timestamp.UnixMilli(),
	})
}

func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
