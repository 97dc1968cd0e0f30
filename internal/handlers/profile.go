package handlers

import (
	"errors"

	"github.com/hrpanel/hrpanel-api/internal/logging"
	"github.com/hrpanel/hrpanel-api/internal/middleware"
	"github.com/hrpanel/hrpanel-api/internal/services"
	"github.com/hrpanel/hrpanel-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type ProfileHandler struct {
	accountService AccountServiceInterface
	log            logging.Logger
}

func NewProfileHandler(accountService AccountServiceInterface, log logging.Logger) *ProfileHandler {
	return &ProfileHandler{accountService: accountService, log: log}
}

func (h *ProfileHandler) GetProfile(c *drift.Context) {
	account := middleware.GetAccount(c)
	if account == nil {
		c.Unauthorized("not authenticated")
		return
	}

	_ = c.JSON(200, dto.AccountProfileFrom(account))
}

func (h *ProfileHandler) UpdateProfile(c *drift.Context) {
	account := middleware.GetAccount(c)
	if account == nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		c.BadRequest(err.Error())
		return
	}

	ctx := c.Request.Context()

	updated, err := h.accountService.UpdateProfile(ctx, account.ID, services.ProfileUpdate{
		Name:            req.Name,
		Email:           req.Email,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			c.BadRequest("current password is incorrect")
		case errors.Is(err, services.ErrEmailTaken):
			c.BadRequest("email is already in use")
		case errors.Is(err, services.ErrAccountNotFound):
			c.NotFound("account not found")
		default:
			h.log.Error(ctx, "failed to update profile", "account_id", account.ID, "error", err)
			c.InternalServerError("failed to update profile")
		}
		return
	}

	_ = c.JSON(200, dto.AccountProfileFrom(updated))
}
