package handlers

import (
	"errors"
	"net/http"
	"time"

	"studiokit/internal/caching"
	"studiokit/internal/common"
	"studiokit/internal/models"
	"studiokit/internal/repositories"
	"studiokit/internal/services"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// AuthHandlers handles signup, login and token refresh.
type AuthHandlers struct {
	authService    services.AuthService
	cacheSvc       caching.CacheService
	userRepo       repositories.UserRepository
	tenantRepo     repositories.TenantRepository
	membershipRepo repositories.MembershipRepository
	assignmentRepo repositories.RoleAssignmentRepository
}

func NewAuthHandlers(
	authService services.AuthService,
	cacheSvc caching.CacheService,
	userRepo repositories.UserRepository,
	tenantRepo repositories.TenantRepository,
	membershipRepo repositories.MembershipRepository,
	assignmentRepo repositories.RoleAssignmentRepository,
) *AuthHandlers {
	return &AuthHandlers{
		authService:    authService,
		cacheSvc:       cacheSvc,
		userRepo:       userRepo,
		tenantRepo:     tenantRepo,
		membershipRepo: membershipRepo,
		assignmentRepo: assignmentRepo,
	}
}

// SignupRequest creates a studio and its owner account in one step.
type SignupRequest struct {
	StudioName string `json:"studio_name"`
	Slug       string `json:"slug"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
}

// Signup registers a new studio with an owner membership.
func (h *AuthHandlers) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "Invalid request format")
	}
	if req.StudioName == "" || req.Slug == "" || req.Email == "" || req.Password == "" {
		return common.SendValidationError(c, "body", "studio_name, slug, email and password are required")
	}

	ctx := c.Request().Context()

	if existing, err := h.tenantRepo.GetBySlug(ctx, req.Slug); err == nil && existing != nil {
		return common.SendValidationError(c, "slug", "Slug is already taken")
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return common.SendServerError(c, "Failed to check slug")
	}

	user, err := h.userRepo.GetByEmail(ctx, req.Email)
	switch {
	case err == nil:
		// An existing account may open another studio, but only by
		// proving it owns the email. Anything less would let anyone mint
		// tokens for a registered address.
		if !h.authService.CheckPassword(user.PasswordHash, req.Password) {
			return common.SendError(c, http.StatusUnauthorized, common.CodeUnauthorized, "Invalid credentials", nil)
		}
	case errors.Is(err, pgx.ErrNoRows):
		hash, err := h.authService.HashPassword(req.Password)
		if err != nil {
			return common.SendServerError(c, "Failed to process password")
		}
		user = &models.User{
			ID:           uuid.New(),
			Email:        req.Email,
			PasswordHash: hash,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Role:         "member",
		}
		if err := h.userRepo.Create(ctx, user); err != nil {
			return common.SendServerError(c, "Failed to create user")
		}
	default:
		return common.SendServerError(c, "Failed to look up user")
	}

	tenant := &models.Tenant{
		ID:     uuid.New(),
		Name:   req.StudioName,
		Slug:   req.Slug,
		Status: models.TenantStatusActive,
	}
	if err := h.tenantRepo.Create(ctx, tenant); err != nil {
		return common.SendServerError(c, "Failed to create studio")
	}

	membership := &models.Membership{
		ID:       uuid.New(),
		TenantID: tenant.ID,
		UserID:   user.ID,
		Status:   models.MembershipStatusActive,
	}
	if err := h.membershipRepo.Create(ctx, membership); err != nil {
		return common.SendServerError(c, "Failed to create membership")
	}

	assignment := &models.RoleAssignment{
		ID:           uuid.New(),
		MembershipID: membership.ID,
		Role:         models.RoleOwner,
	}
	if err := h.assignmentRepo.Create(ctx, assignment); err != nil {
		return common.SendServerError(c, "Failed to assign owner role")
	}

	tokens, err := h.authService.GenerateTokens(ctx, user.ID, nil)
	if err != nil {
		return common.SendServerError(c, "Failed to issue tokens")
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"tenant": tenant,
		"user":   user,
		"tokens": tokens,
	})
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	// OTPCode is set after the client completed a second factor; its
	// presence is reflected in the token's amr claim.
	OTPCode string `json:"otp_code,omitempty"`
}

// Login authenticates a user and issues tokens.
func (h *AuthHandlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "Invalid request format")
	}
	if req.Email == "" || req.Password == "" {
		return common.SendValidationError(c, "body", "email and password are required")
	}

	ctx := c.Request().Context()

	limited, err := h.cacheSvc.IsRateLimited(ctx, "login:"+req.Email, 10, time.Minute)
	if err == nil && limited {
		return c.JSON(http.StatusTooManyRequests, common.CreateErrorResponse(
			"rate_limited", "Too many login attempts, try again later", nil))
	}

	user, err := h.userRepo.GetByEmail(ctx, req.Email)
	if err != nil || !h.authService.CheckPassword(user.PasswordHash, req.Password) {
		return common.SendUnauthorizedError(c)
	}

	var amr []string
	if user.MFAEnabled && req.OTPCode != "" {
		amr = []string{"otp"}
	}

	tokens, err := h.authService.GenerateTokens(ctx, user.ID, amr)
	if err != nil {
		return common.SendServerError(c, "Failed to issue tokens")
	}
	return c.JSON(http.StatusOK, tokens)
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh exchanges a refresh token for a new token pair.
func (h *AuthHandlers) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return common.SendValidationError(c, "refresh_token", "refresh_token is required")
	}

	tokens, err := h.authService.RefreshToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}
	return c.JSON(http.StatusOK, tokens)
}

// Logout revokes the presented refresh token.
func (h *AuthHandlers) Logout(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return common.SendValidationError(c, "refresh_token", "refresh_token is required")
	}
	if err := h.authService.RevokeRefreshToken(c.Request().Context(), req.RefreshToken); err != nil {
		return common.SendServerError(c, "Failed to revoke token")
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the caller's resolved context: the bootstrap endpoint the
// frontend renders setup flows from.
func (h *AuthHandlers) Me(c echo.Context) error {
	ac, ok := common.GetAuthContext(c.Request().Context())
	if !ok || !ac.Authenticated() {
		return common.SendUnauthorizedError(c)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"user":              ac.User,
		"tenant":            ac.Tenant,
		"membership":        ac.Membership,
		"roles":             ac.Roles,
		"permissions":       ac.Permissions.Keys(),
		"features":          featureKeys(ac.Features),
		"is_platform_admin": ac.IsPlatformAdmin,
		"impersonated":      ac.Impersonated(),
	})
}

func featureKeys(fs common.FeatureSet) []string {
	keys := make([]string, 0, len(fs))
	for k := range fs {
		keys = append(keys, k)
	}
	return keys
}
