package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/libradesk/library-backend/internal/model"
)

func (r *repository) ListOverdueBorrows(ctx context.Context, now time.Time) ([]model.Borrow, error) {
	q, args, err := qb.Select("*").
		From(borrowsTableName).
		Where("returned_on is null").
		Where(sq.Lt{"return_date": now}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}
	var borrows []model.Borrow
	if err := r.db.SelectContext(ctx, &borrows, q, args...); err != nil {
		return nil, err
	}
	return borrows, nil
}

// UpsertFine creates the fine on first overdue detection and overwrites the
// amount on every later sweep, as long as the fine is unpaid. A settled fine
// keeps its amount. At most one fine per borrow is enforced by the unique
// constraint on borrow_id. The returned bool reports whether the row was
// freshly inserted (xmax = 0 only for new rows).
func (r *repository) UpsertFine(ctx context.Context, fine model.Fine) (bool, error) {
	q := fmt.Sprintf(`insert into %s (borrow_id, borrower_id, amount, issued_date, paid)
	values ($1, $2, $3, $4, false)
	on conflict (borrow_id) do update set amount = excluded.amount
	where not %s.paid
	returning (xmax = 0) as created`, finesTableName, finesTableName)

	var created bool
	if err := r.db.QueryRowContext(ctx, q, fine.BorrowID, fine.BorrowerID, fine.Amount, fine.IssuedDate).
		Scan(&created); err != nil {
		// The conditional update returns no row for a paid fine.
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		r.log.Error("UpsertFine", zap.Int("borrow_id", fine.BorrowID), zap.Error(err))
		return false, err
	}
	return created, nil
}

func (r *repository) ListFines(ctx context.Context) ([]model.FineView, error) {
	q, args, err := qb.Select("f.id", "u.full_name as borrower_name", "d.name as item_name", "f.amount", "f.paid").
		From(finesTableName + " f").
		Join(fmt.Sprintf("%s u on u.id = f.borrower_id", usersTableName)).
		Join(fmt.Sprintf("%s b on b.id = f.borrow_id", borrowsTableName)).
		Join(fmt.Sprintf("%s i on i.id = b.item_id", itemsTableName)).
		Join(fmt.Sprintf("%s d on d.id = i.description_id", descriptionsTableName)).
		OrderBy("f.id").
		ToSql()
	if err != nil {
		return nil, err
	}
	var fines []model.FineView
	if err := r.db.SelectContext(ctx, &fines, q, args...); err != nil {
		return nil, err
	}
	return fines, nil
}

func (r *repository) InsertLoanEvent(ctx context.Context, event model.LoanEventRecord) error {
	q, args, err := qb.Insert(loanEventsTableName).
		Columns("event_type", "borrow_uid", "username", "item_name", "occurred_at").
		Values(event.EventType, event.BorrowUid, event.Username, event.ItemName, event.OccurredAt).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q, args...)
	return err
}
