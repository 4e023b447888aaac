package service

import (
	"context"

	"github.com/libradesk/library-backend/internal/model"
	"github.com/libradesk/library-backend/pkg/kafka"
)

func (s *Service) RecordLoanEvent(ctx context.Context, event kafka.LoanEvent) error {
	return s.repo.InsertLoanEvent(ctx, model.LoanEventRecord{
		EventType:  string(event.Type),
		BorrowUid:  event.BorrowUid,
		Username:   event.Username,
		ItemName:   event.ItemName,
		OccurredAt: event.OccurredAt,
	})
}
