// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, compression, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/foodgram/go-foodgram-backend/internal/auth"
	"github.com/foodgram/go-foodgram-backend/internal/config"
	"github.com/foodgram/go-foodgram-backend/internal/domain"
	"github.com/foodgram/go-foodgram-backend/internal/http/handlers"
	"github.com/foodgram/go-foodgram-backend/internal/http/middleware"
	"github.com/foodgram/go-foodgram-backend/internal/repo"
	"github.com/foodgram/go-foodgram-backend/internal/services"

	_ "github.com/foodgram/go-foodgram-backend/docs" // swagger docs registration
)

// userRepoShim adapts the repository free functions to the services.UserRepo
// interface expected by the UserService. This keeps services decoupled from
// the concrete repo package while reusing existing functions.
type userRepoShim struct{}

func (userRepoShim) CreateUser(ctx context.Context, db *gorm.DB, email, username, firstName, lastName, passwordHash string) (*domain.User, error) {
	return repo.CreateUser(ctx, db, email, username, firstName, lastName, passwordHash)
}

func (userRepoShim) GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	return repo.GetUser(ctx, db, id)
}

func (userRepoShim) GetUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	return repo.GetUserByEmail(ctx, db, email)
}

func (userRepoShim) CountUsers(ctx context.Context, db *gorm.DB) (int64, error) {
	return repo.CountUsers(ctx, db)
}

func (userRepoShim) ListUsersPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.User, error) {
	return repo.ListUsersPage(ctx, db, offset, limit)
}

func (userRepoShim) UpdateAvatar(ctx context.Context, db *gorm.DB, id, avatar string) error {
	return repo.UpdateAvatar(ctx, db, id, avatar)
}

func (userRepoShim) UpdatePasswordHash(ctx context.Context, db *gorm.DB, id, hash string) error {
	return repo.UpdatePasswordHash(ctx, db, id, hash)
}

// ingredientRepoShim adapts the catalog functions. It satisfies both
// services.IngredientRepo and services.IngredientCatalog, so one value feeds
// the catalog endpoints and the reference resolution inside recipe writes.
type ingredientRepoShim struct{}

func (ingredientRepoShim) ListIngredients(ctx context.Context, db *gorm.DB, prefix string) ([]domain.Ingredient, error) {
	return repo.ListIngredients(ctx, db, prefix)
}

func (ingredientRepoShim) GetIngredient(ctx context.Context, db *gorm.DB, id string) (*domain.Ingredient, error) {
	return repo.GetIngredient(ctx, db, id)
}

func (ingredientRepoShim) GetIngredientsByIDs(ctx context.Context, db *gorm.DB, ids []string) (map[string]domain.Ingredient, error) {
	return repo.GetIngredientsByIDs(ctx, db, ids)
}

// recipeRepoShim adapts the recipe functions to services.RecipeRepo. It also
// satisfies services.ShortLinkRecipes via GetRecipe.
type recipeRepoShim struct{}

func (recipeRepoShim) CreateRecipe(ctx context.Context, db *gorm.DB, authorID, name, text, image string, cookingTime int) (*domain.Recipe, error) {
	return repo.CreateRecipe(ctx, db, authorID, name, text, image, cookingTime)
}

func (recipeRepoShim) GetRecipe(ctx context.Context, db *gorm.DB, id string) (*domain.Recipe, error) {
	return repo.GetRecipe(ctx, db, id)
}

func (recipeRepoShim) UpdateRecipeScalars(ctx context.Context, db *gorm.DB, id, name, text, image string, cookingTime int) error {
	return repo.UpdateRecipeScalars(ctx, db, id, name, text, image, cookingTime)
}

func (recipeRepoShim) DeleteRecipe(ctx context.Context, db *gorm.DB, id string) error {
	return repo.DeleteRecipe(ctx, db, id)
}

func (recipeRepoShim) ReplaceRecipeIngredients(ctx context.Context, db *gorm.DB, recipeID string, links []domain.RecipeIngredient) error {
	return repo.ReplaceRecipeIngredients(ctx, db, recipeID, links)
}

func (recipeRepoShim) ListRecipeIngredients(ctx context.Context, db *gorm.DB, recipeID string) ([]repo.IngredientLine, error) {
	return repo.ListRecipeIngredients(ctx, db, recipeID)
}

func (recipeRepoShim) CountRecipes(ctx context.Context, db *gorm.DB, f repo.RecipeFilter) (int64, error) {
	return repo.CountRecipes(ctx, db, f)
}

func (recipeRepoShim) ListRecipesPage(ctx context.Context, db *gorm.DB, f repo.RecipeFilter, offset, limit int) ([]domain.Recipe, error) {
	return repo.ListRecipesPage(ctx, db, f, offset, limit)
}

func (recipeRepoShim) ListRecipesByAuthor(ctx context.Context, db *gorm.DB, authorID string, limit int) ([]domain.Recipe, error) {
	return repo.ListRecipesByAuthor(ctx, db, authorID, limit)
}

func (recipeRepoShim) CountRecipesByAuthor(ctx context.Context, db *gorm.DB, authorID string) (int64, error) {
	return repo.CountRecipesByAuthor(ctx, db, authorID)
}

// relationRepoShim adapts the favorite/cart/subscription functions to
// services.RelationRepo.
type relationRepoShim struct{}

func (relationRepoShim) AddFavorite(ctx context.Context, db *gorm.DB, userID, recipeID string) error {
	return repo.AddFavorite(ctx, db, userID, recipeID)
}

func (relationRepoShim) RemoveFavorite(ctx context.Context, db *gorm.DB, userID, recipeID string) (bool, error) {
	return repo.RemoveFavorite(ctx, db, userID, recipeID)
}

func (relationRepoShim) IsFavorited(ctx context.Context, db *gorm.DB, userID, recipeID string) (bool, error) {
	return repo.IsFavorited(ctx, db, userID, recipeID)
}

func (relationRepoShim) AddCartItem(ctx context.Context, db *gorm.DB, userID, recipeID string) error {
	return repo.AddCartItem(ctx, db, userID, recipeID)
}

func (relationRepoShim) RemoveCartItem(ctx context.Context, db *gorm.DB, userID, recipeID string) (bool, error) {
	return repo.RemoveCartItem(ctx, db, userID, recipeID)
}

func (relationRepoShim) IsInCart(ctx context.Context, db *gorm.DB, userID, recipeID string) (bool, error) {
	return repo.IsInCart(ctx, db, userID, recipeID)
}

func (relationRepoShim) AddSubscription(ctx context.Context, db *gorm.DB, subscriberID, authorID string) error {
	return repo.AddSubscription(ctx, db, subscriberID, authorID)
}

func (relationRepoShim) RemoveSubscription(ctx context.Context, db *gorm.DB, subscriberID, authorID string) (bool, error) {
	return repo.RemoveSubscription(ctx, db, subscriberID, authorID)
}

func (relationRepoShim) IsSubscribed(ctx context.Context, db *gorm.DB, subscriberID, authorID string) (bool, error) {
	return repo.IsSubscribed(ctx, db, subscriberID, authorID)
}

func (relationRepoShim) CountSubscribedAuthors(ctx context.Context, db *gorm.DB, subscriberID string) (int64, error) {
	return repo.CountSubscribedAuthors(ctx, db, subscriberID)
}

func (relationRepoShim) ListSubscribedAuthorsPage(ctx context.Context, db *gorm.DB, subscriberID string, offset, limit int) ([]domain.User, error) {
	return repo.ListSubscribedAuthorsPage(ctx, db, subscriberID, offset, limit)
}

// relationTargetsShim resolves the rows a relation points at, so a favorite
// of a deleted recipe maps to not-found instead of a dangling insert.
type relationTargetsShim struct{}

func (relationTargetsShim) GetRecipe(ctx context.Context, db *gorm.DB, id string) (*domain.Recipe, error) {
	return repo.GetRecipe(ctx, db, id)
}

func (relationTargetsShim) GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	return repo.GetUser(ctx, db, id)
}

// shoppingRepoShim adapts the cart aggregation query to services.ShoppingRepo.
type shoppingRepoShim struct{}

func (shoppingRepoShim) AggregateShoppingList(ctx context.Context, db *gorm.DB, userID string) ([]domain.ShoppingListItem, error) {
	return repo.AggregateShoppingList(ctx, db, userID)
}

// shortLinkRepoShim adapts the share-link functions to services.ShortLinkRepo.
type shortLinkRepoShim struct{}

func (shortLinkRepoShim) GetShortLinkByRecipe(ctx context.Context, db *gorm.DB, recipeID string) (*domain.ShortLink, error) {
	return repo.GetShortLinkByRecipe(ctx, db, recipeID)
}

func (shortLinkRepoShim) GetShortLinkByCode(ctx context.Context, db *gorm.DB, code string) (*domain.ShortLink, error) {
	return repo.GetShortLinkByCode(ctx, db, code)
}

func (shortLinkRepoShim) CodeExists(ctx context.Context, db *gorm.DB, code string) (bool, error) {
	return repo.CodeExists(ctx, db, code)
}

func (shortLinkRepoShim) CreateShortLink(ctx context.Context, db *gorm.DB, recipeID, code string) (*domain.ShortLink, error) {
	return repo.CreateShortLink(ctx, db, recipeID, code)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), rate limiting, CORS
// and security headers, health and metrics endpoints, and then mounts the
// versioned public API under /api/v* plus the short-link redirect at /s.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Rate limiter (per user/IP)
//  8. CORS, security headers, gzip
//  9. Bearer-token authentication (anonymous pass-through)
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			"X-API-Key", // project-specific sensitive header example
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB covers the base64 avatar payloads)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 8) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "Content-Disposition"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "Content-Disposition"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Response compression (skips the /metrics text exposition)
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// 9) Bearer-token authentication; anonymous requests pass through
	tokenSvc := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	r.Use(middleware.Authenticate(tokenSvc))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Swagger UI (dev/staging only)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db
	userSvc := services.NewUserService(db, userRepoShim{})
	ingSvc := services.NewIngredientService(db, ingredientRepoShim{})

	recipeSvc := services.NewRecipeService(db, recipeRepoShim{}, ingredientRepoShim{})
	recipeSvc.MinCookingTime = cfg.Recipe.MinCookingTime
	recipeSvc.MinAmount = cfg.Recipe.MinIngredientEach

	relSvc := services.NewRelationService(db, relationRepoShim{}, relationTargetsShim{})
	shopSvc := services.NewShoppingService(db, shoppingRepoShim{})

	linkSvc := services.NewShortLinkService(db, shortLinkRepoShim{}, recipeRepoShim{})
	linkSvc.CodeLength = cfg.Recipe.ShortCodeLength
	linkSvc.MaxTries = cfg.Recipe.ShortCodeTries

	h := handlers.New(userSvc, ingSvc, recipeSvc, relSvc, shopSvc, linkSvc, tokenSvc, handlers.Options{
		PublicURL:       cfg.PublicURL,
		RecipePath:      cfg.RecipePath,
		DefaultPageSize: cfg.DefaultPage,
	})

	// Short-link redirect lives at the site root, outside the API prefix
	r.GET("/s/:code", h.RedirectShortLink)

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Accounts
		api.POST("/users", h.Register)
		api.GET("/users", h.ListUsers)
		api.GET("/users/me", middleware.RequireAuth(), h.Me)
		api.GET("/users/subscriptions", middleware.RequireAuth(), h.ListSubscriptions)
		api.GET("/users/:id", h.GetUser)
		api.PUT("/users/me/avatar", middleware.RequireAuth(), h.SetAvatar)
		api.DELETE("/users/me/avatar", middleware.RequireAuth(), h.DeleteAvatar)
		api.POST("/users/set_password", middleware.RequireAuth(), h.SetPassword)
		api.POST("/users/:id/subscribe", middleware.RequireAuth(), h.Subscribe)
		api.DELETE("/users/:id/subscribe", middleware.RequireAuth(), h.Unsubscribe)

		// Token auth
		api.POST("/auth/token/login", h.Login)
		api.POST("/auth/token/logout", middleware.RequireAuth(), h.Logout)

		// Ingredient catalog
		api.GET("/ingredients", h.ListIngredients)
		api.GET("/ingredients/:id", h.GetIngredient)

		// Recipes
		api.GET("/recipes", h.ListRecipes)
		api.POST("/recipes", middleware.RequireAuth(), h.CreateRecipe)
		api.GET("/recipes/download_shopping_cart", middleware.RequireAuth(), h.DownloadShoppingCart)
		api.GET("/recipes/:id", h.GetRecipe)
		api.PATCH("/recipes/:id", middleware.RequireAuth(), h.UpdateRecipe)
		api.DELETE("/recipes/:id", middleware.RequireAuth(), h.DeleteRecipe)
		api.GET("/recipes/:id/get-link", h.GetLink)

		// Favorites and shopping cart membership
		api.POST("/recipes/:id/favorite", middleware.RequireAuth(), h.Favorite)
		api.DELETE("/recipes/:id/favorite", middleware.RequireAuth(), h.Unfavorite)
		api.POST("/recipes/:id/shopping_cart", middleware.RequireAuth(), h.AddToCart)
		api.DELETE("/recipes/:id/shopping_cart", middleware.RequireAuth(), h.RemoveFromCart)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
