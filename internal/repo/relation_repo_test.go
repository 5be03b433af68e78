package repo

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/foodgram/go-foodgram-backend/internal/domain"
)

func newRelationRepoDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("relation_repo_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func TestAddFavorite_DuplicatePairRejected(t *testing.T) {
	db := newRelationRepoDB(t, &domain.Favorite{})

	if err := AddFavorite(context.Background(), db, "u1", "r1"); err != nil {
		t.Fatalf("first AddFavorite: %v", err)
	}
	if err := AddFavorite(context.Background(), db, "u1", "r1"); err == nil {
		t.Fatalf("expected unique violation on duplicate pair")
	}
	// Different pair is fine.
	if err := AddFavorite(context.Background(), db, "u1", "r2"); err != nil {
		t.Fatalf("different recipe: %v", err)
	}
	if err := AddFavorite(context.Background(), db, "u2", "r1"); err != nil {
		t.Fatalf("different user: %v", err)
	}
}

func TestRemoveFavorite_ReportsRemoval(t *testing.T) {
	db := newRelationRepoDB(t, &domain.Favorite{})

	removed, err := RemoveFavorite(context.Background(), db, "u1", "r1")
	if err != nil {
		t.Fatalf("RemoveFavorite: %v", err)
	}
	if removed {
		t.Fatalf("nothing to remove, expected false")
	}

	if err := AddFavorite(context.Background(), db, "u1", "r1"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	removed, err = RemoveFavorite(context.Background(), db, "u1", "r1")
	if err != nil || !removed {
		t.Fatalf("expected removal, got removed=%v err=%v", removed, err)
	}

	ok, err := IsFavorited(context.Background(), db, "u1", "r1")
	if err != nil || ok {
		t.Fatalf("pair should be gone, got ok=%v err=%v", ok, err)
	}
}

func TestCartItem_AddRemoveCheck(t *testing.T) {
	db := newRelationRepoDB(t, &domain.ShoppingCart{})

	if err := AddCartItem(context.Background(), db, "u1", "r1"); err != nil {
		t.Fatalf("AddCartItem: %v", err)
	}
	if err := AddCartItem(context.Background(), db, "u1", "r1"); err == nil {
		t.Fatalf("expected unique violation on duplicate pair")
	}

	ok, err := IsInCart(context.Background(), db, "u1", "r1")
	if err != nil || !ok {
		t.Fatalf("expected in cart, got ok=%v err=%v", ok, err)
	}

	removed, err := RemoveCartItem(context.Background(), db, "u1", "r1")
	if err != nil || !removed {
		t.Fatalf("expected removal, got removed=%v err=%v", removed, err)
	}
	removed, err = RemoveCartItem(context.Background(), db, "u1", "r1")
	if err != nil || removed {
		t.Fatalf("second removal should be a no-op, got removed=%v err=%v", removed, err)
	}
}

func TestSubscription_AddRemoveCheck(t *testing.T) {
	db := newRelationRepoDB(t, &domain.Subscription{})

	if err := AddSubscription(context.Background(), db, "u1", "author"); err != nil {
		t.Fatalf("AddSubscription: %v", err)
	}
	if err := AddSubscription(context.Background(), db, "u1", "author"); err == nil {
		t.Fatalf("expected unique violation on duplicate pair")
	}
	// The reverse direction is a distinct pair.
	if err := AddSubscription(context.Background(), db, "author", "u1"); err != nil {
		t.Fatalf("reverse subscription: %v", err)
	}

	ok, err := IsSubscribed(context.Background(), db, "u1", "author")
	if err != nil || !ok {
		t.Fatalf("expected subscribed, got ok=%v err=%v", ok, err)
	}

	removed, err := RemoveSubscription(context.Background(), db, "u1", "author")
	if err != nil || !removed {
		t.Fatalf("expected removal, got removed=%v err=%v", removed, err)
	}
	ok, err = IsSubscribed(context.Background(), db, "u1", "author")
	if err != nil || ok {
		t.Fatalf("pair should be gone, got ok=%v err=%v", ok, err)
	}
}

func TestListSubscribedAuthorsPage_OrderAndPagination(t *testing.T) {
	db := newRelationRepoDB(t, &domain.User{}, &domain.Subscription{})

	// Three authors, subscribed to in a known order.
	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"a1", "a2", "a3"} {
		u := domain.User{ID: id, Email: id + "@example.com", Username: id, FirstName: "F", LastName: "L", PasswordHash: "h"}
		if err := db.Create(&u).Error; err != nil {
			t.Fatalf("seed author %s: %v", id, err)
		}
		s := domain.Subscription{
			ID:           "s" + id,
			SubscriberID: "me",
			AuthorID:     id,
			SubscribedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := db.Create(&s).Error; err != nil {
			t.Fatalf("seed sub %s: %v", id, err)
		}
	}
	// Someone else's subscription must not leak in.
	if err := db.Create(&domain.Subscription{ID: "sx", SubscriberID: "other", AuthorID: "a1", SubscribedAt: base}).Error; err != nil {
		t.Fatalf("seed other sub: %v", err)
	}

	page, err := ListSubscribedAuthorsPage(context.Background(), db, "me", 1, 2)
	if err != nil {
		t.Fatalf("ListSubscribedAuthorsPage: %v", err)
	}
	if len(page) != 2 || page[0].ID != "a2" || page[1].ID != "a3" {
		t.Fatalf("unexpected page: %+v", page)
	}

	total, err := CountSubscribedAuthors(context.Background(), db, "me")
	if err != nil {
		t.Fatalf("CountSubscribedAuthors: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected 3, got %d", total)
	}
}
