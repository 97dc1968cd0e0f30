package handlers

import (
	"errors"

	"github.com/google/uuid"
	"github.com/hrpanel/hrpanel-api/internal/logging"
	"github.com/hrpanel/hrpanel-api/internal/middleware"
	"github.com/hrpanel/hrpanel-api/internal/services"
	"github.com/hrpanel/hrpanel-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

// AdminHandler serves the admin management routes. Every route sits behind
// middleware.RequireAdmin.
type AdminHandler struct {
	accountService AccountServiceInterface
	adminService   AdminServiceInterface
	log            logging.Logger
}

func NewAdminHandler(accountService AccountServiceInterface, adminService AdminServiceInterface, log logging.Logger) *AdminHandler {
	return &AdminHandler{
		accountService: accountService,
		adminService:   adminService,
		log:            log,
	}
}

func (h *AdminHandler) ListAdmins(c *drift.Context) {
	ctx := c.Request.Context()

	admins, err := h.accountService.ListAdmins(ctx)
	if err != nil {
		h.log.Error(ctx, "failed to list admins", "error", err)
		c.InternalServerError("failed to list admins")
		return
	}

	_ = c.JSON(200, dto.AccountProfilesFrom(admins))
}

// CreateAdmin promotes the account owning the handle, or queues the
// promotion until that handle signs in.
func (h *AdminHandler) CreateAdmin(c *drift.Context) {
	var req dto.CreateAdminRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		c.BadRequest(err.Error())
		return
	}

	ctx := c.Request.Context()

	result, err := h.adminService.Promote(ctx, req.TelegramUsername, middleware.GetAccountID(c))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidHandle):
			c.BadRequest("telegram username is required")
		case errors.Is(err, services.ErrDuplicatePending):
			c.BadRequest("telegram username is already pending promotion")
		case errors.Is(err, services.ErrAlreadyPrivileged):
			c.BadRequest("user is already an admin")
		default:
			h.log.Error(ctx, "failed to promote admin", "telegram_username", req.TelegramUsername, "error", err)
			c.InternalServerError("failed to promote admin")
		}
		return
	}

	if result.Account != nil {
		profile := dto.AccountProfileFrom(result.Account)
		_ = c.JSON(200, dto.CreateAdminResponse{
			Message: "user promoted to admin",
			User:    &profile,
		})
		return
	}

	pending := dto.PendingAdminFrom(result.Pending)
	_ = c.JSON(200, dto.CreateAdminResponse{
		Message:      "admin will be granted on first sign-in",
		PendingAdmin: &pending,
	})
}

func (h *AdminHandler) RevokeAdmin(c *drift.Context) {
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid account id")
		return
	}

	ctx := c.Request.Context()

	account, err := h.accountService.RevokeAdmin(ctx, middleware.GetAccountID(c), targetID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCannotRevokeSelf):
			c.BadRequest("cannot revoke your own admin rights")
		case errors.Is(err, services.ErrNotAdmin):
			c.BadRequest("user is not an admin")
		case errors.Is(err, services.ErrAccountNotFound):
			c.NotFound("account not found")
		default:
			h.log.Error(ctx, "failed to revoke admin", "account_id", targetID, "error", err)
			c.InternalServerError("failed to revoke admin")
		}
		return
	}

	_ = c.JSON(200, dto.RevokeAdminResponse{
		Message: "admin rights revoked",
		User:    dto.AccountProfileFrom(account),
	})
}

func (h *AdminHandler) ListPending(c *drift.Context) {
	ctx := c.Request.Context()

	pending, err := h.adminService.ListPending(ctx)
	if err != nil {
		h.log.Error(ctx, "failed to list pending admins", "error", err)
		c.InternalServerError("failed to list pending admins")
		return
	}

	_ = c.JSON(200, dto.PendingAdminsFrom(pending))
}

func (h *AdminHandler) RemovePending(c *drift.Context) {
	handle := c.Param("handle")
	ctx := c.Request.Context()

	if err := h.adminService.RemovePending(ctx, handle); err != nil {
		if errors.Is(err, services.ErrPendingNotFound) {
			c.NotFound("pending admin not found")
			return
		}
		h.log.Error(ctx, "failed to remove pending admin", "telegram_username", handle, "error", err)
		c.InternalServerError("failed to remove pending admin")
		return
	}

	_ = c.JSON(200, dto.MessageResponse{Message: "pending admin removed"})
}
