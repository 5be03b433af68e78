// Package repo – shopping-cart aggregation.
//
// This file holds the consolidated shopping-list query: it joins the user's
// cart through recipes to ingredient links and the catalog, groups by
// ingredient identity, and sums the amounts. The output order is sorted by
// ingredient name (then unit) so results are deterministic.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/foodgram/go-foodgram-backend/internal/domain"
)

// AggregateShoppingList returns one summed line per (ingredient name, unit)
// across every recipe in the user's cart. An empty cart yields an empty
// slice, not an error.
func AggregateShoppingList(ctx context.Context, db *gorm.DB, userID string) ([]domain.ShoppingListItem, error) {
	var out []domain.ShoppingListItem
	err := db.WithContext(ctx).
		Table("shopping_carts sc").
		Select("i.name AS name, i.measurement_unit AS measurement_unit, SUM(ri.amount) AS total").
		Joins("JOIN recipe_ingredients ri ON ri.recipe_id = sc.recipe_id").
		Joins("JOIN ingredients i ON i.id = ri.ingredient_id").
		Where("sc.user_id = ?", userID).
		Group("i.name, i.measurement_unit").
		Order("i.name asc, i.measurement_unit asc").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.ShoppingListItem{}
	}
	return out, nil
}

// CountCartItems returns the number of recipes in the user's cart.
func CountCartItems(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.ShoppingCart{}).
		Where("user_id = ?", userID).
		Count(&n).Error
	return n, err
}
