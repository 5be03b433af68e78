package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/foodgram/go-foodgram-backend/internal/config"
	"github.com/foodgram/go-foodgram-backend/internal/domain"
	"github.com/foodgram/go-foodgram-backend/internal/repo"
)

// --- test DB helper (pure-Go sqlite, no CGO) ---
func newTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func testConfig(base string) config.Config {
	return config.Config{
		APIBasePath: base,
		RateRPS:     100,
		RateBurst:   100,
		DefaultPage: 6,
		PublicURL:   "https://food.example.com",
		RecipePath:  "/recipes",
		CORS:        config.CORSConfig{AllowedOrigins: nil}, // triggers AllowAllOrigins branch
		Security:    config.SecurityConfig{EnableHSTS: false, HSTSMaxAge: 0},
		OTEL:        config.OTELConfig{ServiceName: "test-svc"},
		Auth:        config.AuthConfig{JWTSecret: "router-test-secret", TokenTTL: time.Hour, Issuer: "foodgram-test"},
		Recipe: config.RecipeConfig{
			MinCookingTime:    1,
			MinIngredientEach: 1,
			ShortCodeLength:   8,
			ShortCodeTries:    15,
		},
	}
}

func TestRegisterRoutes_CORSAllowAll_Health_Metrics_Fallbacks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	cfg := testConfig("/api/v1")
	db := newTestDB(t, "routerdb")

	RegisterRoutes(r, db, cfg)

	// /health works
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	// CORS (AllowAllOrigins) → header "*"
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("AllowAllOrigins expected '*', got %q", got)
	}

	// /metrics is wired
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || len(w.Body.Bytes()) == 0 {
		t.Fatalf("GET /metrics bad: code=%d len=%d", w.Code, w.Body.Len())
	}

	// NoRoute → 404
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/nope", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /nope expected 404, got %d", w.Code)
	}

	// NoMethod → 405 (POST /health)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/health", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /health expected 405, got %d", w.Code)
	}
}

func TestRegisterRoutes_CORSWithOrigins_HeaderEcho(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	cfg := testConfig("/api/v2")
	cfg.CORS = config.CORSConfig{AllowedOrigins: []string{"http://example.com"}}
	db := newTestDB(t, "routerdb_cors")

	RegisterRoutes(r, db, cfg)

	// Any request runs through CORS middleware; header should reflect origin.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://example.com")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Fatalf("expected ACAO echo, got %q", got)
	}
}

func TestRegisterRoutes_AuthRequiredEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	db := newTestDB(t, "routerdb_auth")
	RegisterRoutes(r, db, testConfig("/api/v1"))

	protected := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/users/me"},
		{http.MethodPost, "/api/v1/recipes"},
		{http.MethodGet, "/api/v1/recipes/download_shopping_cart"},
		{http.MethodPost, "/api/v1/recipes/r-1/favorite"},
		{http.MethodPost, "/api/v1/users/u-1/subscribe"},
		{http.MethodPost, "/api/v1/users/set_password"},
	}
	for _, ep := range protected {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(ep.method, ep.path, nil))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s anonymous: expected 401, got %d", ep.method, ep.path, w.Code)
		}
	}

	// Public reads stay open
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/recipes", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/v1/recipes anonymous: expected 200, got %d", w.Code)
	}
}

// End-to-end flow over the real wiring: register, log in, create a recipe,
// favorite it, fill the cart, download the list, share and follow the link.
func TestAPI_FullRecipeFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	db := newTestDB(t, "routerdb_flow")
	RegisterRoutes(r, db, testConfig("/api/v1"))

	// Seed catalog entries for the recipe to reference.
	n, err := repo.UpsertIngredients(context.Background(), db, []domain.Ingredient{
		{Name: "beet", MeasurementUnit: "pcs"},
		{Name: "salt", MeasurementUnit: "g"},
	})
	if err != nil || n != 2 {
		t.Fatalf("seed ingredients: n=%d err=%v", n, err)
	}
	var beet, salt domain.Ingredient
	if err := db.Where("name = ?", "beet").First(&beet).Error; err != nil {
		t.Fatalf("load beet: %v", err)
	}
	if err := db.Where("name = ?", "salt").First(&salt).Error; err != nil {
		t.Fatalf("load salt: %v", err)
	}

	do := func(method, path, token, body string) *httptest.ResponseRecorder {
		t.Helper()
		var rd io.Reader
		if body != "" {
			rd = bytes.NewBufferString(body)
		}
		req := httptest.NewRequest(method, path, rd)
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	// Register
	w := do(http.MethodPost, "/api/v1/users", "", `{
		"email":"chef@example.com","username":"chef",
		"first_name":"Julia","last_name":"Child","password":"s3cret-pass"
	}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", w.Code, w.Body.String())
	}

	// Login
	w = do(http.MethodPost, "/api/v1/auth/token/login", "", `{"email":"chef@example.com","password":"s3cret-pass"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	var tok struct {
		AuthToken string `json:"auth_token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &tok); err != nil || tok.AuthToken == "" {
		t.Fatalf("login token: %v %s", err, w.Body.String())
	}

	// Create a recipe
	w = do(http.MethodPost, "/api/v1/recipes", tok.AuthToken, `{
		"ingredients":[{"id":"`+beet.ID+`","amount":2},{"id":"`+salt.ID+`","amount":8}],
		"name":"borscht","image":"https://cdn.example.com/b.png",
		"text":"simmer slowly","cooking_time":90
	}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create recipe: %d %s", w.Code, w.Body.String())
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil || created.ID == "" {
		t.Fatalf("create payload: %v %s", err, w.Body.String())
	}

	// Favorite it; the second attempt must report the conflict.
	if w = do(http.MethodPost, "/api/v1/recipes/"+created.ID+"/favorite", tok.AuthToken, ""); w.Code != http.StatusCreated {
		t.Fatalf("favorite: %d %s", w.Code, w.Body.String())
	}
	if w = do(http.MethodPost, "/api/v1/recipes/"+created.ID+"/favorite", tok.AuthToken, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("double favorite: expected 400, got %d", w.Code)
	}

	// Cart and aggregated download
	if w = do(http.MethodPost, "/api/v1/recipes/"+created.ID+"/shopping_cart", tok.AuthToken, ""); w.Code != http.StatusCreated {
		t.Fatalf("add to cart: %d %s", w.Code, w.Body.String())
	}
	w = do(http.MethodGet, "/api/v1/recipes/download_shopping_cart", tok.AuthToken, "")
	if w.Code != http.StatusOK {
		t.Fatalf("download cart: %d %s", w.Code, w.Body.String())
	}
	if body := w.Body.String(); !strings.Contains(body, "beet - 2 pcs") || !strings.Contains(body, "salt - 8 g") {
		t.Fatalf("cart body = %q", body)
	}

	// Share link and redirect
	w = do(http.MethodGet, "/api/v1/recipes/"+created.ID+"/get-link", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get-link: %d %s", w.Code, w.Body.String())
	}
	var link struct {
		ShortLink string `json:"short-link"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &link); err != nil {
		t.Fatalf("link payload: %v", err)
	}
	idx := strings.LastIndex(link.ShortLink, "/s/")
	if idx < 0 {
		t.Fatalf("unexpected short link %q", link.ShortLink)
	}
	w = do(http.MethodGet, link.ShortLink[idx:], "", "")
	if w.Code != http.StatusFound {
		t.Fatalf("redirect: %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/recipes/"+created.ID {
		t.Fatalf("redirect location = %q", loc)
	}
}

func Test_limitBody_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// tiny cap to trigger MaxBytesReader
	r.Use(limitBody(10))
	r.POST("/echo", func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(http.StatusRequestEntityTooLarge, "too big")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("0123456789AB")) // 12 bytes
	r.ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 from limitBody, got %d", w.Code)
	}
}

func Test_groupWithPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	// "/" and "" should mount at root
	root1 := groupWithPrefix(r, "/")
	root1.GET("/one", func(c *gin.Context) { c.String(http.StatusOK, "one") })
	root2 := groupWithPrefix(r, "")
	root2.GET("/two", func(c *gin.Context) { c.String(http.StatusOK, "two") })

	// non-root prefix
	api := groupWithPrefix(r, "/api")
	api.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	for path, want := range map[string]string{"/one": "one", "/two": "two", "/api/ping": "pong"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK || rec.Body.String() != want {
			t.Fatalf("GET %s got %d %q", path, rec.Code, rec.Body.String())
		}
	}
}

// Smoke test that a request traverses otel + ratelimit + security headers pipeline.
func TestPipeline_Smoke(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	cfg := testConfig("/api/v1")
	cfg.Security = config.SecurityConfig{EnableHSTS: true, HSTSMaxAge: time.Hour} // enabled (but only set on https)
	db := newTestDB(t, "routerdb_smoke")
	RegisterRoutes(r, db, cfg)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	// simulate https so HSTS could be eligible if middleware checks scheme
	req.URL.Scheme = "https"
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("pipeline GET /health = %d", w.Code)
	}
	// RequestID header should be present (from RequestID middleware)
	if rid := w.Header().Get("X-Request-ID"); rid == "" {
		t.Fatalf("expected X-Request-ID header to be set")
	}
}

func Test_userRepoShim_Proxies(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t, "routerdb_usershim")

	shim := userRepoShim{}
	ctx := context.Background()

	u, err := shim.CreateUser(ctx, db, "a@b.co", "ab", "A", "B", "hash")
	if err != nil || u.ID == "" {
		t.Fatalf("CreateUser: %+v %v", u, err)
	}
	if got, err := shim.GetUser(ctx, db, u.ID); err != nil || got.Email != "a@b.co" {
		t.Fatalf("GetUser: %+v %v", got, err)
	}
	if got, err := shim.GetUserByEmail(ctx, db, "a@b.co"); err != nil || got.ID != u.ID {
		t.Fatalf("GetUserByEmail: %+v %v", got, err)
	}
	if n, err := shim.CountUsers(ctx, db); err != nil || n != 1 {
		t.Fatalf("CountUsers: %d %v", n, err)
	}
	if page, err := shim.ListUsersPage(ctx, db, 0, 10); err != nil || len(page) != 1 {
		t.Fatalf("ListUsersPage: %d %v", len(page), err)
	}
	if err := shim.UpdateAvatar(ctx, db, u.ID, "https://cdn.example.com/a.png"); err != nil {
		t.Fatalf("UpdateAvatar: %v", err)
	}
	if err := shim.UpdatePasswordHash(ctx, db, u.ID, "hash2"); err != nil {
		t.Fatalf("UpdatePasswordHash: %v", err)
	}
	got, err := shim.GetUser(ctx, db, u.ID)
	if err != nil || got.Avatar != "https://cdn.example.com/a.png" || got.PasswordHash != "hash2" {
		t.Fatalf("after updates: %+v %v", got, err)
	}
}

func Test_relationRepoShim_Proxies(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t, "routerdb_relshim")

	ctx := context.Background()
	u, err := userRepoShim{}.CreateUser(ctx, db, "x@y.co", "xy", "X", "Y", "h")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	rec, err := recipeRepoShim{}.CreateRecipe(ctx, db, u.ID, "soup", "boil", "img", 10)
	if err != nil {
		t.Fatalf("seed recipe: %v", err)
	}

	shim := relationRepoShim{}
	if err := shim.AddFavorite(ctx, db, u.ID, rec.ID); err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}
	if ok, err := shim.IsFavorited(ctx, db, u.ID, rec.ID); err != nil || !ok {
		t.Fatalf("IsFavorited: %v %v", ok, err)
	}
	if removed, err := shim.RemoveFavorite(ctx, db, u.ID, rec.ID); err != nil || !removed {
		t.Fatalf("RemoveFavorite: %v %v", removed, err)
	}

	if err := shim.AddCartItem(ctx, db, u.ID, rec.ID); err != nil {
		t.Fatalf("AddCartItem: %v", err)
	}
	if ok, err := shim.IsInCart(ctx, db, u.ID, rec.ID); err != nil || !ok {
		t.Fatalf("IsInCart: %v %v", ok, err)
	}
	if removed, err := shim.RemoveCartItem(ctx, db, u.ID, rec.ID); err != nil || !removed {
		t.Fatalf("RemoveCartItem: %v %v", removed, err)
	}

	other, err := userRepoShim{}.CreateUser(ctx, db, "z@y.co", "zy", "Z", "Y", "h")
	if err != nil {
		t.Fatalf("seed author: %v", err)
	}
	if err := shim.AddSubscription(ctx, db, u.ID, other.ID); err != nil {
		t.Fatalf("AddSubscription: %v", err)
	}
	if ok, err := shim.IsSubscribed(ctx, db, u.ID, other.ID); err != nil || !ok {
		t.Fatalf("IsSubscribed: %v %v", ok, err)
	}
	if n, err := shim.CountSubscribedAuthors(ctx, db, u.ID); err != nil || n != 1 {
		t.Fatalf("CountSubscribedAuthors: %d %v", n, err)
	}
	if authors, err := shim.ListSubscribedAuthorsPage(ctx, db, u.ID, 0, 10); err != nil || len(authors) != 1 {
		t.Fatalf("ListSubscribedAuthorsPage: %d %v", len(authors), err)
	}
	if removed, err := shim.RemoveSubscription(ctx, db, u.ID, other.ID); err != nil || !removed {
		t.Fatalf("RemoveSubscription: %v %v", removed, err)
	}
}
