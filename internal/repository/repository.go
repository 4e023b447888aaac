package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/libradesk/library-backend/internal/model"
)

type Repository interface {
	CreateUser(ctx context.Context, user model.User) error
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
	GetBorrowerByID(ctx context.Context, id int) (model.User, error)
	GetBorrowerByUsername(ctx context.Context, username string) (model.User, error)

	CreateDescription(ctx context.Context, desc model.ItemDescription) (model.ItemDescription, error)
	GetDescriptionByUid(ctx context.Context, uid string) (model.ItemDescription, error)
	ListDescriptions(ctx context.Context) ([]model.ItemDescription, error)
	CreateItem(ctx context.Context, descriptionID int) (model.Item, error)
	ListItems(ctx context.Context, descriptionID int) ([]model.Item, error)
	ReserveCopy(ctx context.Context, descriptionID int) (model.Item, error)
	ReleaseCopy(ctx context.Context, itemID int) error

	CreateBorrow(ctx context.Context, borrow model.Borrow) (model.Borrow, error)
	GetBorrowByUid(ctx context.Context, uid string) (model.Borrow, error)
	ListBorrowDetails(ctx context.Context, borrowerID int) ([]model.BorrowDetail, error)
	CloseBorrow(ctx context.Context, borrowID, itemID int, returnedOn time.Time) error

	ListOverdueBorrows(ctx context.Context, now time.Time) ([]model.Borrow, error)
	UpsertFine(ctx context.Context, fine model.Fine) (bool, error)
	ListFines(ctx context.Context) ([]model.FineView, error)

	InsertLoanEvent(ctx context.Context, event model.LoanEventRecord) error
}

type repository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewRepository(db *sqlx.DB, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const (
	usersTableName        = `users`
	descriptionsTableName = `item_descriptions`
	itemsTableName        = `items`
	borrowsTableName      = `borrows`
	finesTableName        = `fines`
	loanEventsTableName   = `loan_events`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
