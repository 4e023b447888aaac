package handler

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/libradesk/library-backend/pkg/kafka"
)

type loanEvents func(ctx context.Context, event kafka.LoanEvent) error

type Consumer struct {
	eventHandler loanEvents
	log          *zap.Logger
}

func NewConsumer(events loanEvents, log *zap.Logger) *Consumer {
	return &Consumer{
		eventHandler: events,
		log:          log.Named("consumer"),
	}
}

// Setup runs at the start of every consumer-group session, including each
// rejoin after a rebalance, so it must stay safe to call repeatedly.
func (consumer *Consumer) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (consumer *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (consumer *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				consumer.log.Warn("message channel was closed")
				return nil
			}
			var event kafka.LoanEvent
			if err := json.Unmarshal(message.Value, &event); err != nil {
				consumer.log.Error("", zap.Error(err))
				session.MarkMessage(message, "")
				continue
			}

			if err := consumer.eventHandler(context.Background(), event); err != nil {
				consumer.log.Error("consumer.eventHandler", zap.Error(err))
				continue
			}

			consumer.log.Debug("Message claimed:", zap.String("value", string(message.Value)), zap.Time("timestamp", message.Timestamp), zap.String("topic", message.Topic))
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}
