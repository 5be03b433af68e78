// User and subscription HTTP handlers.
//
// This file exposes the REST endpoints for accounts:
//   - POST   /users                     (register)
//   - GET    /users                     (list, paginated)
//   - GET    /users/me                  (current account)
//   - GET    /users/{id}                (profile)
//   - PUT    /users/me/avatar           (set avatar)
//   - DELETE /users/me/avatar           (remove avatar)
//   - POST   /users/set_password        (change password)
//   - GET    /users/subscriptions       (followed authors, paginated)
//   - POST   /users/{id}/subscribe      (follow)
//   - DELETE /users/{id}/subscribe      (unfollow)
//   - POST   /auth/token/login          (issue bearer token)
//   - POST   /auth/token/logout         (client-side token discard)
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/go-foodgram-backend/internal/domain"
	"github.com/foodgram/go-foodgram-backend/internal/utils"
)

//
// DTOs
//

// RegisterRequest is the JSON payload for creating an account.
type RegisterRequest struct {
	Email     string `json:"email" binding:"required" example:"chef@example.com"`
	Username  string `json:"username" binding:"required" example:"chef"`
	FirstName string `json:"first_name" binding:"required" example:"Julia"`
	LastName  string `json:"last_name" binding:"required" example:"Child"`
	Password  string `json:"password" binding:"required"`
}

// LoginRequest is the JSON payload for issuing a bearer token.
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"chef@example.com"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse carries the issued bearer token.
type TokenResponse struct {
	AuthToken string `json:"auth_token"`
}

// SetAvatarRequest is the JSON payload for setting the profile image URL.
type SetAvatarRequest struct {
	Avatar string `json:"avatar" binding:"required" example:"https://cdn.example.com/a.png"`
}

// AvatarResponse echoes the stored avatar URL.
type AvatarResponse struct {
	Avatar string `json:"avatar"`
}

// SetPasswordRequest is the JSON payload for changing the password.
type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// ListUsersResponse wraps a page of users and pagination information.
type ListUsersResponse struct {
	Users      []UserResponse `json:"users"`
	Pagination Pagination     `json:"pagination"`
}

// SubscriptionResponse is an author the caller follows, with a truncatable
// recipe preview and the full recipe count.
type SubscriptionResponse struct {
	UserResponse
	Recipes      []RecipeMinified `json:"recipes"`
	RecipesCount int64            `json:"recipes_count"`
}

// ListSubscriptionsResponse wraps a page of followed authors.
type ListSubscriptionsResponse struct {
	Authors    []SubscriptionResponse `json:"authors"`
	Pagination Pagination             `json:"pagination"`
}

//
// Handlers
//

// Register godoc
// @ID          registerUser
// @Summary     Register a new account
// @Description Creates an account from email, username, names, and password.
// @Tags        Users
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.RegisterRequest  true  "Registration payload"
// @Success     201  {object} handlers.UserResponse
// @Failure     400  {object} handlers.ErrorResponse "Validation or duplicate"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /users [post]
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	u, err := h.userSvc.Register(c.Request.Context(),
		req.Email, req.Username, req.FirstName, req.LastName, req.Password)
	if err != nil {
		failErr(c, err)
		return
	}

	out, err := h.userPayload(c.Request.Context(), "", u)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, out)
}

// Login godoc
// @ID          login
// @Summary     Issue a bearer token
// @Description Verifies email+password and returns a signed token.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.LoginRequest  true  "Credentials"
// @Success     200  {object} handlers.TokenResponse
// @Failure     400  {object} handlers.ErrorResponse "Invalid credentials"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /auth/token/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email and password required")
		return
	}

	u, err := h.userSvc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		failErr(c, err)
		return
	}

	token, err := h.tokens.Issue(u.ID)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not issue token")
		return
	}
	ok(c, http.StatusOK, TokenResponse{AuthToken: token})
}

// Logout godoc
// @ID          logout
// @Summary     Log out
// @Description Tokens are stateless; the server side is a no-op and clients discard the token.
// @Tags        Auth
// @Success     204  {string} string "No Content"
// @Router      /auth/token/logout [post]
func (h *Handlers) Logout(c *gin.Context) {
	noContent(c)
}

// Me godoc
// @ID          me
// @Summary     Current account
// @Tags        Users
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object} handlers.UserResponse
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Router      /users/me [get]
func (h *Handlers) Me(c *gin.Context) {
	uid := userID(c)
	u, err := h.userSvc.Get(c.Request.Context(), uid)
	if err != nil {
		failErr(c, err)
		return
	}
	out, err := h.userPayload(c.Request.Context(), uid, u)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// GetUser godoc
// @ID          getUser
// @Summary     Profile by id
// @Description Returns a user profile; is_subscribed is relative to the caller.
// @Tags        Users
// @Produce     json
// @Param       id  path  string  true  "User ID (UUID)"
// @Success     200  {object} handlers.UserResponse
// @Failure     404  {object} handlers.ErrorResponse "User not found"
// @Router      /users/{id} [get]
func (h *Handlers) GetUser(c *gin.Context) {
	u, err := h.userSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	out, err := h.userPayload(c.Request.Context(), userID(c), u)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// ListUsers godoc
// @ID          listUsers
// @Summary     List users (paginated)
// @Tags        Users
// @Produce     json
// @Param       page   query  int  false  "Page number"     minimum(1) default(1)
// @Param       limit  query  int  false  "Items per page"  minimum(1) maximum(100)
// @Success     200  {object} handlers.ListUsersResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /users [get]
func (h *Handlers) ListUsers(c *gin.Context) {
	ctx := c.Request.Context()
	viewer := userID(c)
	page, pageSize := h.clampPagination(c)

	items, total, err := h.userSvc.ListPage(ctx, page, pageSize)
	if err != nil {
		failErr(c, err)
		return
	}

	users := make([]UserResponse, 0, len(items))
	for i := range items {
		out, err := h.userPayload(ctx, viewer, &items[i])
		if err != nil {
			failErr(c, err)
			return
		}
		users = append(users, out)
	}

	ok(c, http.StatusOK, ListUsersResponse{
		Users:      users,
		Pagination: newPagination(page, pageSize, total),
	})
}

// SetAvatar godoc
// @ID          setAvatar
// @Summary     Set the profile image URL
// @Tags        Users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body  handlers.SetAvatarRequest  true  "Avatar payload"
// @Success     200  {object} handlers.AvatarResponse
// @Failure     400  {object} handlers.ErrorResponse "Missing avatar"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Router      /users/me/avatar [put]
func (h *Handlers) SetAvatar(c *gin.Context) {
	var req SetAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Avatar) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "avatar required")
		return
	}
	if err := h.userSvc.SetAvatar(c.Request.Context(), userID(c), req.Avatar); err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, AvatarResponse{Avatar: strings.TrimSpace(req.Avatar)})
}

// DeleteAvatar godoc
// @ID          deleteAvatar
// @Summary     Remove the profile image
// @Tags        Users
// @Security    BearerAuth
// @Success     204  {string} string "No Content"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Router      /users/me/avatar [delete]
func (h *Handlers) DeleteAvatar(c *gin.Context) {
	if err := h.userSvc.RemoveAvatar(c.Request.Context(), userID(c)); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

// SetPassword godoc
// @ID          setPassword
// @Summary     Change the account password
// @Tags        Users
// @Accept      json
// @Security    BearerAuth
// @Param       body  body  handlers.SetPasswordRequest  true  "Password payload"
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Wrong current password or weak new one"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Router      /users/set_password [post]
func (h *Handlers) SetPassword(c *gin.Context) {
	var req SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "current_password and new_password required")
		return
	}
	if err := h.userSvc.ChangePassword(c.Request.Context(), userID(c), req.CurrentPassword, req.NewPassword); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

// ListSubscriptions godoc
// @ID          listSubscriptions
// @Summary     Authors the caller follows (paginated)
// @Description Each author includes a recipe preview (truncatable via recipes_limit) and the full count.
// @Tags        Subscriptions
// @Produce     json
// @Security    BearerAuth
// @Param       page           query  int  false  "Page number"            minimum(1) default(1)
// @Param       limit          query  int  false  "Authors per page"       minimum(1) maximum(100)
// @Param       recipes_limit  query  int  false  "Recipes per author (0 = all)"
// @Success     200  {object} handlers.ListSubscriptionsResponse
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Router      /users/subscriptions [get]
func (h *Handlers) ListSubscriptions(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)
	page, pageSize := h.clampPagination(c)
	recipesLimit := utils.AtoiDefault(c.Query("recipes_limit"), 0)

	authors, total, err := h.relSvc.ListSubscriptions(ctx, uid, page, pageSize)
	if err != nil {
		failErr(c, err)
		return
	}

	out := make([]SubscriptionResponse, 0, len(authors))
	for i := range authors {
		item, err := h.subscriptionPayload(c, uid, &authors[i], recipesLimit)
		if err != nil {
			failErr(c, err)
			return
		}
		out = append(out, item)
	}

	ok(c, http.StatusOK, ListSubscriptionsResponse{
		Authors:    out,
		Pagination: newPagination(page, pageSize, total),
	})
}

// Subscribe godoc
// @ID          subscribe
// @Summary     Follow an author
// @Tags        Subscriptions
// @Produce     json
// @Security    BearerAuth
// @Param       id             path   string  true   "Author ID (UUID)"
// @Param       recipes_limit  query  int     false  "Recipes in the response preview (0 = all)"
// @Success     201  {object} handlers.SubscriptionResponse
// @Failure     400  {object} handlers.ErrorResponse "Self-subscribe or already subscribed"
// @Failure     404  {object} handlers.ErrorResponse "Author not found"
// @Router      /users/{id}/subscribe [post]
func (h *Handlers) Subscribe(c *gin.Context) {
	uid := userID(c)
	author, err := h.relSvc.Subscribe(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}

	recipesLimit := utils.AtoiDefault(c.Query("recipes_limit"), 0)
	item, err := h.subscriptionPayload(c, uid, author, recipesLimit)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, item)
}

// Unsubscribe godoc
// @ID          unsubscribe
// @Summary     Unfollow an author
// @Tags        Subscriptions
// @Security    BearerAuth
// @Param       id  path  string  true  "Author ID (UUID)"
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Not subscribed"
// @Failure     404  {object} handlers.ErrorResponse "Author not found"
// @Router      /users/{id}/subscribe [delete]
func (h *Handlers) Unsubscribe(c *gin.Context) {
	if err := h.relSvc.Unsubscribe(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

// subscriptionPayload builds the author block of a subscription response: the
// profile, a recipe preview truncated to recipesLimit, and the full count.
func (h *Handlers) subscriptionPayload(c *gin.Context, viewerID string, author *domain.User, recipesLimit int) (SubscriptionResponse, error) {
	ctx := c.Request.Context()

	profile, err := h.userPayload(ctx, viewerID, author)
	if err != nil {
		return SubscriptionResponse{}, err
	}

	recipes, err := h.recipeSvc.ListByAuthor(ctx, author.ID, recipesLimit)
	if err != nil {
		return SubscriptionResponse{}, err
	}
	preview := make([]RecipeMinified, 0, len(recipes))
	for i := range recipes {
		preview = append(preview, minified(&recipes[i]))
	}

	count, err := h.recipeSvc.CountByAuthor(ctx, author.ID)
	if err != nil {
		return SubscriptionResponse{}, err
	}

	return SubscriptionResponse{
		UserResponse: profile,
		Recipes:      preview,
		RecipesCount: count,
	}, nil
}
