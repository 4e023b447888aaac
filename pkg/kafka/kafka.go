package kafka

import (
	"context"
	"time"

	"github.com/IBM/sarama"
)

type Config struct {
	Addrs []string `yaml:"addrs" envconfig:"KAFKA_ADDRS" default:"localhost:9092"`
}

const (
	LoanEventsTopic         = "loan-events"
	LoanEventsConsumerGroup = "library-loan-events"
)

type EventType string

const (
	EventBorrowed   EventType = "BORROWED"
	EventReturned   EventType = "RETURNED"
	EventFineIssued EventType = "FINE_ISSUED"
)

// LoanEvent is the audit record published on every loan state change.
type LoanEvent struct {
	Type       EventType `json:"type"`
	BorrowUid  string    `json:"borrowUid"`
	Username   string    `json:"username"`
	ItemName   string    `json:"itemName"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewProducer(cfg Config) (sarama.SyncProducer, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Producer.RequiredAcks = sarama.WaitForAll
	defaultCfg.Producer.Return.Successes = true

	return sarama.NewSyncProducer(cfg.Addrs, defaultCfg)
}

func NewConsumer(cfg Config, group string) (sarama.ConsumerGroup, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	defaultCfg.Consumer.Offsets.Initial = sarama.OffsetOldest

	return sarama.NewConsumerGroup(cfg.Addrs, group, defaultCfg)
}

// Consume blocks until ctx is cancelled, rejoining the group after each
// rebalance.
func Consume(ctx context.Context, cg sarama.ConsumerGroup, h sarama.ConsumerGroupHandler, topics ...string) error {
	for {
		if err := cg.Consume(ctx, topics, h); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}
