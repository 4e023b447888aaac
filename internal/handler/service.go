package handler

import (
	"context"

	"github.com/libradesk/library-backend/internal/model"
	"github.com/libradesk/library-backend/internal/service"
	"github.com/libradesk/library-backend/pkg/auth"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go -package=mocks

type AuthService interface {
	RegisterUser(ctx context.Context, req model.UserCreateRequest) error
	Authorize(ctx context.Context, req model.AuthRequest) (model.AuthResponse, error)
}

type CatalogService interface {
	CreateDescription(ctx context.Context, req model.CreateDescriptionRequest) (model.ItemDescription, error)
	ListDescriptions(ctx context.Context) ([]model.ItemDescription, error)
	AddItem(ctx context.Context, descriptionUid string) (model.Item, error)
	ListItems(ctx context.Context, descriptionUid string) ([]model.Item, error)
}

type BorrowService interface {
	SubmitBorrow(ctx context.Context, p auth.Principal, req model.SubmitBorrowRequest) (model.BorrowSummary, error)
	SubmitReturn(ctx context.Context, p auth.Principal, borrowUid string) error
	ListBorrows(ctx context.Context, p auth.Principal) ([]model.BorrowSummary, error)
}

type FineService interface {
	ListFines(ctx context.Context) ([]model.FineView, error)
}

var (
	_ AuthService    = (*service.Service)(nil)
	_ CatalogService = (*service.Service)(nil)
	_ BorrowService  = (*service.Service)(nil)
	_ FineService    = (*service.Service)(nil)
)
