package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/libradesk/library-backend/internal/errs"
	"github.com/libradesk/library-backend/internal/model"
)

func (r *repository) CreateUser(ctx context.Context, user model.User) error {
	q, args, err := qb.Insert(usersTableName).
		Columns("username", "password", "email", "full_name", "role").
		Values(user.Username, user.Password, user.Email, user.FullName, user.Role).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return errs.ErrConflict
		}
		r.log.Error("CreateUser", zap.String("username", user.Username), zap.Error(err))
		return err
	}
	return nil
}

func (r *repository) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	q, args, err := qb.Select("id", "username", "password", "email", "full_name", "role").
		From(usersTableName).
		Where(sq.Eq{"username": username}).
		ToSql()
	if err != nil {
		return model.User{}, err
	}
	var user model.User
	if err := r.db.GetContext(ctx, &user, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, errs.ErrNotFound
		}
		return model.User{}, err
	}
	return user, nil
}

func (r *repository) GetBorrowerByID(ctx context.Context, id int) (model.User, error) {
	return r.getBorrower(ctx, sq.Eq{"id": id})
}

func (r *repository) GetBorrowerByUsername(ctx context.Context, username string) (model.User, error) {
	return r.getBorrower(ctx, sq.Eq{"username": username})
}

func (r *repository) getBorrower(ctx context.Context, pred sq.Eq) (model.User, error) {
	q, args, err := qb.Select("id", "username", "password", "email", "full_name", "role").
		From(usersTableName).
		Where(pred).
		Where(sq.Eq{"role": "BORROWER"}).
		ToSql()
	if err != nil {
		return model.User{}, err
	}
	var user model.User
	if err := r.db.GetContext(ctx, &user, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, errs.ErrNotFound
		}
		return model.User{}, err
	}
	return user, nil
}
