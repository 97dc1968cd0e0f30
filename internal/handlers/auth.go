package handlers

import (
	"errors"

	"github.com/hrpanel/hrpanel-api/internal/logging"
	"github.com/hrpanel/hrpanel-api/internal/models"
	"github.com/hrpanel/hrpanel-api/internal/services"
	"github.com/hrpanel/hrpanel-api/internal/telegram"
	"github.com/hrpanel/hrpanel-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type AuthHandler struct {
	verifier       VerifierInterface
	accountService AccountServiceInterface
	tokenService   TokenServiceInterface
	log            logging.Logger
}

func NewAuthHandler(
	verifier VerifierInterface,
	accountService AccountServiceInterface,
	tokenService TokenServiceInterface,
	log logging.Logger,
) *AuthHandler {
	return &AuthHandler{
		verifier:       verifier,
		accountService: accountService,
		tokenService:   tokenService,
		log:            log,
	}
}

// TelegramAuth exchanges Mini-App init data for a session token.
func (h *AuthHandler) TelegramAuth(c *drift.Context) {
	var req dto.TelegramAuthRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		c.BadRequest(err.Error())
		return
	}

	ctx := c.Request.Context()

	data, err := h.verifier.Verify(req.InitData)
	if err != nil {
		switch {
		case errors.Is(err, telegram.ErrMalformedPayload):
			c.BadRequest("malformed init data")
		case errors.Is(err, telegram.ErrMissingSignature):
			c.BadRequest("missing init data signature")
		case errors.Is(err, telegram.ErrInvalidSignature):
			h.log.Warn(ctx, "rejected init data with invalid signature")
			c.BadRequest("invalid init data signature")
		case errors.Is(err, telegram.ErrMissingIdentity):
			c.BadRequest("init data has no user id")
		default:
			h.log.Error(ctx, "failed to verify init data", "error", err)
			c.InternalServerError("failed to verify init data")
		}
		return
	}

	account, err := h.accountService.AuthenticateTelegram(ctx, data)
	if err != nil {
		if errors.Is(err, telegram.ErrMissingIdentity) {
			c.BadRequest("init data has no user id")
			return
		}
		h.log.Error(ctx, "failed to authenticate telegram user", "telegram_id", data.ExternalID, "error", err)
		c.InternalServerError("failed to authenticate")
		return
	}

	h.respondWithToken(c, account)
}

// Login is the legacy email and password sign-in.
func (h *AuthHandler) Login(c *drift.Context) {
	var req dto.LoginRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		c.BadRequest(err.Error())
		return
	}

	ctx := c.Request.Context()

	account, err := h.accountService.LoginWithPassword(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.Unauthorized("invalid email or password")
			return
		}
		h.log.Error(ctx, "failed to log in", "error", err)
		c.InternalServerError("failed to log in")
		return
	}

	h.respondWithToken(c, account)
}

func (h *AuthHandler) respondWithToken(c *drift.Context, account *models.Account) {
	token, err := h.tokenService.GenerateToken(account.ID, account.IsAdmin)
	if err != nil {
		h.log.Error(c.Request.Context(), "failed to issue token", "account_id", account.ID, "error", err)
		c.InternalServerError("failed to issue token")
		return
	}

	_ = c.JSON(200, dto.TokenResponse{
		AccessToken: token,
		TokenType:   dto.TokenTypeBearer,
		User:        dto.AccountProfileFrom(account),
	})
}
