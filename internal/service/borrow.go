package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/libradesk/library-backend/internal/errs"
	"github.com/libradesk/library-backend/internal/model"
	"github.com/libradesk/library-backend/pkg/auth"
	"github.com/libradesk/library-backend/pkg/kafka"
)

// defaultLoanDays is the due-date offset applied when a borrow request
// carries no explicit return date.
const defaultLoanDays = 14

func (s *Service) SubmitBorrow(ctx context.Context, p auth.Principal, req model.SubmitBorrowRequest) (model.BorrowSummary, error) {
	borrower, err := s.repo.GetBorrowerByID(ctx, req.BorrowerID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.BorrowSummary{}, errors.WithMessagef(errs.ErrNotFound, "borrower %d", req.BorrowerID)
		}
		return model.BorrowSummary{}, err
	}
	if !p.IsLibrarian() && p.Username != borrower.Username {
		return model.BorrowSummary{}, errs.ErrForbidden
	}

	desc, err := s.repo.GetDescriptionByUid(ctx, req.DescriptionUid)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.BorrowSummary{}, errors.WithMessagef(errs.ErrNotFound, "description %s", req.DescriptionUid)
		}
		return model.BorrowSummary{}, err
	}

	item, err := s.repo.ReserveCopy(ctx, desc.ID)
	if err != nil {
		if errors.Is(err, errs.ErrNoAvailableCopy) {
			return model.BorrowSummary{}, errors.WithMessagef(errs.ErrNoAvailableCopy,
				"No available item found for description ID: %s", req.DescriptionUid)
		}
		return model.BorrowSummary{}, err
	}

	borrowDate := req.BorrowDate.Time
	dueDate := borrowDate.AddDate(0, 0, defaultLoanDays)
	if req.ReturnDate != nil {
		dueDate = req.ReturnDate.Time
	}

	borrow := model.Borrow{
		BorrowUid:   uuid.NewString(),
		BorrowerID:  borrower.ID,
		ItemID:      item.ID,
		RequestDate: s.now(),
		BorrowDate:  borrowDate,
		ReturnDate:  dueDate,
		Status:      model.StatusBorrowed,
		Notes:       req.Notes,
	}
	created, err := s.repo.CreateBorrow(ctx, borrow)
	if err != nil {
		// The copy was already claimed; put it back so a failed submission
		// leaves no half-reserved state behind.
		if rerr := s.repo.ReleaseCopy(ctx, item.ID); rerr != nil {
			s.log.Error("release copy after failed borrow", zap.Int("item_id", item.ID), zap.Error(rerr))
		}
		return model.BorrowSummary{}, errors.WithMessage(err, "failed to submit borrow request")
	}

	s.publish(kafka.LoanEvent{
		Type:       kafka.EventBorrowed,
		BorrowUid:  created.BorrowUid,
		Username:   borrower.Username,
		ItemName:   desc.Name,
		OccurredAt: created.RequestDate,
	})

	detail := model.BorrowDetail{
		ID:          created.ID,
		BorrowUid:   created.BorrowUid,
		RequestDate: created.RequestDate,
		BorrowDate:  created.BorrowDate,
		ReturnDate:  created.ReturnDate,
		Status:      created.Status,
		Notes:       created.Notes,
		ItemID:      item.ID,
		Kind:        desc.Kind,
		ItemName:    desc.Name,
		Author:      desc.Author,
		Producer:    desc.Producer,
		BorrowerID:  borrower.ID,
		FullName:    borrower.FullName,
		Email:       borrower.Email,
	}
	return detail.ToSummary(), nil
}

func (s *Service) SubmitReturn(ctx context.Context, p auth.Principal, borrowUid string) error {
	borrow, err := s.repo.GetBorrowByUid(ctx, borrowUid)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return errors.WithMessagef(errs.ErrNotFound, "borrow %s", borrowUid)
		}
		return err
	}

	borrower, err := s.repo.GetBorrowerByID(ctx, borrow.BorrowerID)
	if err != nil {
		return err
	}
	if p.Username != borrower.Username {
		return errs.ErrForbidden
	}
	if borrow.Status != model.StatusBorrowed {
		return errors.WithMessagef(errs.ErrAlreadyReturned, "borrow %s", borrowUid)
	}

	if err := s.repo.CloseBorrow(ctx, borrow.ID, borrow.ItemID, s.now()); err != nil {
		return err
	}

	s.publish(kafka.LoanEvent{
		Type:       kafka.EventReturned,
		BorrowUid:  borrow.BorrowUid,
		Username:   borrower.Username,
		OccurredAt: s.now(),
	})
	return nil
}

func (s *Service) ListBorrows(ctx context.Context, p auth.Principal) ([]model.BorrowSummary, error) {
	borrower, err := s.repo.GetBorrowerByUsername(ctx, p.Username)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errors.WithMessagef(errs.ErrNotFound, "borrower %s", p.Username)
		}
		return nil, err
	}
	details, err := s.repo.ListBorrowDetails(ctx, borrower.ID)
	if err != nil {
		return nil, err
	}
	summaries := make([]model.BorrowSummary, 0, len(details))
	for i := range details {
		summaries = append(summaries, details[i].ToSummary())
	}
	return summaries, nil
}
