package repository

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/libradesk/library-backend/internal/errs"
	"github.com/libradesk/library-backend/internal/model"
)

func (r *repository) CreateDescription(ctx context.Context, desc model.ItemDescription) (model.ItemDescription, error) {
	q, args, err := qb.Insert(descriptionsTableName).
		Columns("description_uid", "name", "kind", "genre", "blurb", "publish_date",
			"total_copies", "image_url", "author", "publisher", "narrator", "producer", "director").
		Values(desc.DescriptionUid, desc.Name, desc.Kind, desc.Genre, desc.Blurb, desc.PublishDate,
			desc.TotalCopies, desc.ImageURL, desc.Author, desc.Publisher, desc.Narrator, desc.Producer, desc.Director).
		Suffix("returning *").
		ToSql()
	if err != nil {
		return model.ItemDescription{}, err
	}
	var res model.ItemDescription
	if err := r.db.GetContext(ctx, &res, q, args...); err != nil {
		r.log.Error("CreateDescription", zap.String("q", q), zap.Any("args", args))
		return model.ItemDescription{}, err
	}
	return res, nil
}

func (r *repository) GetDescriptionByUid(ctx context.Context, uid string) (model.ItemDescription, error) {
	q, args, err := qb.Select("*").
		From(descriptionsTableName).
		Where(sq.Eq{"description_uid": uid}).
		ToSql()
	if err != nil {
		return model.ItemDescription{}, err
	}
	var desc model.ItemDescription
	if err := r.db.GetContext(ctx, &desc, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ItemDescription{}, errs.ErrNotFound
		}
		return model.ItemDescription{}, err
	}
	return desc, nil
}

func (r *repository) ListDescriptions(ctx context.Context) ([]model.ItemDescription, error) {
	q, args, err := qb.Select("*").
		From(descriptionsTableName).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}
	var descs []model.ItemDescription
	if err := r.db.SelectContext(ctx, &descs, q, args...); err != nil {
		return nil, err
	}
	return descs, nil
}

func (r *repository) CreateItem(ctx context.Context, descriptionID int) (model.Item, error) {
	q, args, err := qb.Insert(itemsTableName).
		Columns("description_id", "available").
		Values(descriptionID, true).
		Suffix("returning id, description_id, available").
		ToSql()
	if err != nil {
		return model.Item{}, err
	}
	var item model.Item
	if err := r.db.GetContext(ctx, &item, q, args...); err != nil {
		return model.Item{}, err
	}
	return item, nil
}

func (r *repository) ListItems(ctx context.Context, descriptionID int) ([]model.Item, error) {
	q, args, err := qb.Select("id", "description_id", "available").
		From(itemsTableName).
		Where(sq.Eq{"description_id": descriptionID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}
	var items []model.Item
	if err := r.db.SelectContext(ctx, &items, q, args...); err != nil {
		return nil, err
	}
	return items, nil
}

// ReserveCopy claims the lowest-id available copy in a single statement, so
// two concurrent requests for the last copy cannot both observe it as
// available. SKIP LOCKED keeps a concurrent claimer from blocking on the
// row, it simply moves on to the next copy.
func (r *repository) ReserveCopy(ctx context.Context, descriptionID int) (model.Item, error) {
	q := fmt.Sprintf(`update %s set available = false
	where id = (
		select id from %s
		where description_id = $1 and available
		order by id
		for update skip locked
		limit 1
	)
	returning id, description_id, available`, itemsTableName, itemsTableName)

	var item model.Item
	if err := r.db.GetContext(ctx, &item, q, descriptionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Item{}, errs.ErrNoAvailableCopy
		}
		return model.Item{}, err
	}
	return item, nil
}

func (r *repository) ReleaseCopy(ctx context.Context, itemID int) error {
	q := fmt.Sprintf(`update %s set available = true where id = $1`, itemsTableName)
	if _, err := r.db.ExecContext(ctx, q, itemID); err != nil {
		r.log.Error("ReleaseCopy", zap.Int("item_id", itemID), zap.Error(err))
		return err
	}
	return nil
}
