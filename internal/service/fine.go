package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/libradesk/library-backend/internal/model"
	"github.com/libradesk/library-backend/pkg/kafka"
)

// RunFineSweep maintains one fine per overdue, unreturned loan as of now.
// The amount is always recomputed from elapsed whole overdue days, never
// accumulated, so running the sweep twice in a row is a no-op. A failure on
// one loan is logged and counted without aborting the rest of the batch.
func (s *Service) RunFineSweep(ctx context.Context, now time.Time) (model.SweepResult, error) {
	overdue, err := s.repo.ListOverdueBorrows(ctx, now)
	if err != nil {
		return model.SweepResult{}, errors.WithMessage(err, "list overdue borrows")
	}

	res := model.SweepResult{Scanned: len(overdue)}
	for _, borrow := range overdue {
		overdueDays := int64(now.Sub(borrow.ReturnDate) / (24 * time.Hour))
		fine := model.Fine{
			BorrowID:   borrow.ID,
			BorrowerID: borrow.BorrowerID,
			Amount:     overdueDays * s.fineCfg.DailyRate,
			IssuedDate: now,
		}
		created, err := s.repo.UpsertFine(ctx, fine)
		if err != nil {
			res.Failed++
			s.log.Error("fine sweep: upsert",
				zap.String("borrow_uid", borrow.BorrowUid),
				zap.Error(err))
			continue
		}
		if created {
			res.Created++
			s.publish(kafka.LoanEvent{
				Type:       kafka.EventFineIssued,
				BorrowUid:  borrow.BorrowUid,
				OccurredAt: now,
			})
		} else {
			res.Updated++
		}
	}
	return res, nil
}

func (s *Service) ListFines(ctx context.Context) ([]model.FineView, error) {
	return s.repo.ListFines(ctx)
}
