package service

import (
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/libradesk/library-backend/config"
	"github.com/libradesk/library-backend/internal/repository"
	"github.com/libradesk/library-backend/pkg/kafka"
)

type Service struct {
	log      *zap.Logger
	repo     repository.Repository
	producer sarama.SyncProducer
	fineCfg  config.Fine
	now      func() time.Time
}

func NewService(repo repository.Repository, producer sarama.SyncProducer, fineCfg config.Fine, log *zap.Logger) *Service {
	return &Service{
		log:      log,
		repo:     repo,
		producer: producer,
		fineCfg:  fineCfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// publish emits a loan event best effort. A broker failure must never fail
// the borrow/return/fine operation that produced the event.
func (s *Service) publish(event kafka.LoanEvent) {
	if s.producer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		s.log.Error("marshal loan event", zap.Error(err))
		return
	}
	msg := &sarama.ProducerMessage{Topic: kafka.LoanEventsTopic, Value: sarama.StringEncoder(data)}
	if _, _, err := s.producer.SendMessage(msg); err != nil {
		s.log.Error("publish loan event", zap.String("type", string(event.Type)), zap.Error(err))
	}
}
