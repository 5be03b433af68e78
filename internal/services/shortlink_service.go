// Package services – ShortLinkService
//
// Implements compact share links for recipes. A link is created lazily the
// first time one is requested and memoized: the same recipe always yields the
// same code. Codes are drawn from a 62-character alphabet with crypto/rand;
// the unique index on the code column is the final authority against
// collisions, the pre-insert probe only keeps retries cheap.
package services

import (
	"context"
	"crypto/rand"
	"math/big"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/foodgram/go-foodgram-backend/internal/domain"
)

// codeAlphabet is the character set short codes are drawn from.
const codeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ShortLinkRepo defines the repository contract required by ShortLinkService.
type ShortLinkRepo interface {
	GetShortLinkByRecipe(ctx context.Context, db *gorm.DB, recipeID string) (*domain.ShortLink, error)
	GetShortLinkByCode(ctx context.Context, db *gorm.DB, code string) (*domain.ShortLink, error)
	CodeExists(ctx context.Context, db *gorm.DB, code string) (bool, error)
	CreateShortLink(ctx context.Context, db *gorm.DB, recipeID, code string) (*domain.ShortLink, error)
}

// ShortLinkRecipes is the read side needed to verify the linked recipe.
type ShortLinkRecipes interface {
	GetRecipe(ctx context.Context, db *gorm.DB, id string) (*domain.Recipe, error)
}

// ShortLinkService creates and resolves recipe share links.
type ShortLinkService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the short-link repository used by this service.
	Repo ShortLinkRepo
	// Recipes verifies link targets.
	Recipes ShortLinkRecipes

	// CodeLength is the generated code length in characters.
	CodeLength int
	// MaxTries bounds generation attempts before giving up.
	MaxTries int
}

// NewShortLinkService constructs a ShortLinkService with an 8-character code
// and 15 generation attempts.
func NewShortLinkService(db *gorm.DB, r ShortLinkRepo, recipes ShortLinkRecipes) *ShortLinkService {
	return &ShortLinkService{DB: db, Repo: r, Recipes: recipes, CodeLength: 8, MaxTries: 15}
}

// GetOrCreate returns the short link of a recipe, creating it on first use.
//
// Errors: ErrRecipeNotFound when the recipe is missing, ErrShortLinkExhausted
// when every generation attempt collided.
func (s *ShortLinkService) GetOrCreate(ctx context.Context, recipeID string) (*domain.ShortLink, error) {
	if _, err := s.Recipes.GetRecipe(ctx, s.DB, recipeID); err != nil {
		if isNotFound(err) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	if l, err := s.Repo.GetShortLinkByRecipe(ctx, s.DB, recipeID); err == nil {
		return l, nil
	} else if !isNotFound(err) {
		return nil, err
	}

	tries := s.MaxTries
	if tries <= 0 {
		tries = 15
	}
	for i := 0; i < tries; i++ {
		code, err := s.randomCode()
		if err != nil {
			return nil, err
		}
		if taken, err := s.Repo.CodeExists(ctx, s.DB, code); err != nil {
			return nil, err
		} else if taken {
			continue
		}
		l, err := s.Repo.CreateShortLink(ctx, s.DB, recipeID, code)
		if err != nil {
			if isDuplicate(err) {
				// Either a code race or a concurrent create for the same
				// recipe; in the latter case the existing link wins.
				if existing, gerr := s.Repo.GetShortLinkByRecipe(ctx, s.DB, recipeID); gerr == nil {
					return existing, nil
				}
				continue
			}
			return nil, err
		}
		return l, nil
	}

	log.Warn().
		Str("recipe_id", recipeID).
		Int("tries", tries).
		Msg("short code generation exhausted retries")
	return nil, ErrShortLinkExhausted
}

// Resolve returns the recipe id behind a code, or ErrShortLinkNotFound.
func (s *ShortLinkService) Resolve(ctx context.Context, code string) (string, error) {
	l, err := s.Repo.GetShortLinkByCode(ctx, s.DB, code)
	if err != nil {
		if isNotFound(err) {
			return "", ErrShortLinkNotFound
		}
		return "", err
	}
	return l.RecipeID, nil
}

// randomCode draws CodeLength characters from the alphabet with crypto/rand.
func (s *ShortLinkService) randomCode() (string, error) {
	n := s.CodeLength
	if n <= 0 {
		n = 8
	}
	max := big.NewInt(int64(len(codeAlphabet)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = codeAlphabet[idx.Int64()]
	}
	return string(buf), nil
}
