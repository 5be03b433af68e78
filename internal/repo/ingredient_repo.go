// Package repo – Ingredient repository.
//
// Ingredients form a read-mostly catalog: the API only lists and fetches
// them, while the seed command upserts the catalog in bulk.
package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/foodgram/go-foodgram-backend/internal/domain"
)

// ListIngredients returns catalog entries ordered by name. When prefix is
// non-empty, only entries whose name starts with it (case-insensitive) are
// returned.
func ListIngredients(ctx context.Context, db *gorm.DB, prefix string) ([]domain.Ingredient, error) {
	q := db.WithContext(ctx).Model(&domain.Ingredient{})
	if p := strings.TrimSpace(prefix); p != "" {
		// Escape LIKE wildcards so a literal "%" in the query does not widen the match.
		p = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.ToLower(p))
		q = q.Where(`lower(name) LIKE ? ESCAPE '\'`, p+"%")
	}
	var out []domain.Ingredient
	err := q.Order("name asc, measurement_unit asc").Find(&out).Error
	return out, err
}

// GetIngredient fetches a catalog entry by id, or ErrNotFound if missing.
func GetIngredient(ctx context.Context, db *gorm.DB, id string) (*domain.Ingredient, error) {
	var ing domain.Ingredient
	if err := db.WithContext(ctx).Where("id = ?", id).First(&ing).Error; err != nil {
		return nil, err
	}
	return &ing, nil
}

// GetIngredientsByIDs loads the given catalog entries keyed by id. Missing
// ids are simply absent from the result map; the caller decides whether that
// is an error.
func GetIngredientsByIDs(ctx context.Context, db *gorm.DB, ids []string) (map[string]domain.Ingredient, error) {
	if len(ids) == 0 {
		return map[string]domain.Ingredient{}, nil
	}
	var rows []domain.Ingredient
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]domain.Ingredient, len(rows))
	for _, r := range rows {
		out[r.ID] = r
	}
	return out, nil
}

// UpsertIngredients bulk-inserts catalog entries, skipping rows whose
// (name, measurement_unit) pair already exists. Used by the seed command so
// repeated imports stay idempotent. Returns the number of rows inserted.
func UpsertIngredients(ctx context.Context, db *gorm.DB, items []domain.Ingredient) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
		}
	}
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}, {Name: "measurement_unit"}},
			DoNothing: true,
		}).
		Create(&items)
	return res.RowsAffected, res.Error
}
