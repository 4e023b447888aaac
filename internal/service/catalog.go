package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/libradesk/library-backend/internal/errs"
	"github.com/libradesk/library-backend/internal/model"
)

func (s *Service) CreateDescription(ctx context.Context, req model.CreateDescriptionRequest) (model.ItemDescription, error) {
	desc := model.ItemDescription{
		DescriptionUid: uuid.NewString(),
		Name:           req.Name,
		Kind:           req.Kind,
		Genre:          req.Genre,
		Blurb:          req.Blurb,
		PublishDate:    req.PublishDate.Time,
		TotalCopies:    req.TotalCopies,
		ImageURL:       req.ImageURL,
		Author:         req.Author,
		Publisher:      req.Publisher,
		Narrator:       req.Narrator,
		Producer:       req.Producer,
		Director:       req.Director,
	}
	return s.repo.CreateDescription(ctx, desc)
}

func (s *Service) ListDescriptions(ctx context.Context) ([]model.ItemDescription, error) {
	return s.repo.ListDescriptions(ctx)
}

func (s *Service) AddItem(ctx context.Context, descriptionUid string) (model.Item, error) {
	desc, err := s.repo.GetDescriptionByUid(ctx, descriptionUid)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.Item{}, errors.WithMessagef(errs.ErrNotFound, "description %s", descriptionUid)
		}
		return model.Item{}, err
	}
	return s.repo.CreateItem(ctx, desc.ID)
}

func (s *Service) ListItems(ctx context.Context, descriptionUid string) ([]model.Item, error) {
	desc, err := s.repo.GetDescriptionByUid(ctx, descriptionUid)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errors.WithMessagef(errs.ErrNotFound, "description %s", descriptionUid)
		}
		return nil, err
	}
	return s.repo.ListItems(ctx, desc.ID)
}
