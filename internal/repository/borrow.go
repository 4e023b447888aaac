package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/libradesk/library-backend/internal/errs"
	"github.com/libradesk/library-backend/internal/model"
)

func (r *repository) CreateBorrow(ctx context.Context, borrow model.Borrow) (model.Borrow, error) {
	q, args, err := qb.Insert(borrowsTableName).
		Columns("borrow_uid", "borrower_id", "item_id", "request_date", "borrow_date", "return_date", "status", "notes").
		Values(borrow.BorrowUid, borrow.BorrowerID, borrow.ItemID, borrow.RequestDate,
			borrow.BorrowDate, borrow.ReturnDate, borrow.Status, borrow.Notes).
		Suffix("returning *").
		ToSql()
	if err != nil {
		return model.Borrow{}, err
	}
	var res model.Borrow
	if err := r.db.GetContext(ctx, &res, q, args...); err != nil {
		r.log.Error("CreateBorrow", zap.String("q", q), zap.Any("args", args))
		return model.Borrow{}, err
	}
	return res, nil
}

func (r *repository) GetBorrowByUid(ctx context.Context, uid string) (model.Borrow, error) {
	q, args, err := qb.Select("*").
		From(borrowsTableName).
		Where(sq.Eq{"borrow_uid": uid}).
		ToSql()
	if err != nil {
		return model.Borrow{}, err
	}
	var borrow model.Borrow
	if err := r.db.GetContext(ctx, &borrow, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Borrow{}, errs.ErrNotFound
		}
		return model.Borrow{}, err
	}
	return borrow, nil
}

func (r *repository) ListBorrowDetails(ctx context.Context, borrowerID int) ([]model.BorrowDetail, error) {
	q, args, err := qb.Select("b.id", "b.borrow_uid", "b.request_date", "b.borrow_date", "b.return_date",
		"b.returned_on", "b.status", "b.notes", "b.item_id",
		"d.kind", "d.name as item_name", "d.author", "d.producer",
		"u.id as borrower_id", "u.full_name", "u.email").
		From(borrowsTableName + " b").
		Join(fmt.Sprintf("%s i on i.id = b.item_id", itemsTableName)).
		Join(fmt.Sprintf("%s d on d.id = i.description_id", descriptionsTableName)).
		Join(fmt.Sprintf("%s u on u.id = b.borrower_id", usersTableName)).
		Where(sq.Eq{"b.borrower_id": borrowerID}).
		OrderBy("b.id").
		ToSql()
	if err != nil {
		return nil, err
	}
	var details []model.BorrowDetail
	if err := r.db.SelectContext(ctx, &details, q, args...); err != nil {
		r.log.Error("ListBorrowDetails", zap.String("q", q), zap.Any("args", args))
		return nil, err
	}
	return details, nil
}

// CloseBorrow flips the loan to RETURNED and releases its copy in one
// transaction. The conditional update keeps a second return attempt from
// re-releasing an already-available item.
func (r *repository) CloseBorrow(ctx context.Context, borrowID, itemID int, returnedOn time.Time) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.WithMessage(err, "begin tx")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	q := fmt.Sprintf(`update %s set status = $2, returned_on = $3
	where id = $1 and status = $4`, borrowsTableName)
	res, err := tx.ExecContext(ctx, q, borrowID, model.StatusReturned, returnedOn, model.StatusBorrowed)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errs.ErrAlreadyReturned
	}

	q = fmt.Sprintf(`update %s set available = true where id = $1`, itemsTableName)
	if _, err = tx.ExecContext(ctx, q, itemID); err != nil {
		return err
	}

	return tx.Commit()
}
