package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/foodgram/go-foodgram-backend/internal/domain"
)

// RecipesStats returns the total number of recipes and the most recent
// updated_at timestamp. The timestamp is fetched with an ordered LIMIT 1
// scan rather than MAX(), which SQLite would hand back as TEXT.
func RecipesStats(ctx context.Context, db *gorm.DB) (count int64, lastUpdated time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Recipe{})

	if err = q.Count(&count).Error; err != nil {
		return 0, time.Time{}, err
	}
	if count == 0 {
		return 0, time.Time{}, nil
	}

	err = db.WithContext(ctx).
		Model(&domain.Recipe{}).
		Select("updated_at").
		Order("updated_at DESC").
		Limit(1).
		Scan(&lastUpdated).Error
	if err != nil {
		return 0, time.Time{}, err
	}
	return count, lastUpdated, nil
}
