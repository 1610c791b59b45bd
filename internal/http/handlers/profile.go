package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/unilinkhq/unilink/internal/config"
	"github.com/unilinkhq/unilink/internal/domain/user"
	"github.com/unilinkhq/unilink/internal/http/middlewares"
	"github.com/unilinkhq/unilink/internal/profile"
)

type ProfileService interface {
	Get(ctx context.Context, userID string) (user.User, error)
	Update(ctx context.Context, userID string, payload map[string]any) (user.User, error)
}

type ProfileHandler struct {
	svc ProfileService
}

func NewProfileHandler(svc ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

func (h *ProfileHandler) GetProfile(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnauthorized(ctx, "Unauthorized")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	u, err := h.svc.Get(cctx, userID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, u)
}

func (h *ProfileHandler) UpdateProfile(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnauthorized(ctx, "Unauthorized")
		return
	}

	// The payload is caller-shaped, so bind into a plain map; the service
	// does all field-level screening against the raw key set.
	var payload map[string]any

	if err := ctx.ShouldBindJSON(&payload); err != nil {
		RespondError(ctx, http.StatusBadRequest, "Invalid request body")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	updated, err := h.svc.Update(cctx, userID, payload)

	if err != nil {
		var protectedErr *profile.ProtectedFieldsError
		var jsonErr *profile.InvalidJSONFieldError

		switch {
		case errors.As(err, &protectedErr):
			RespondErrorCode(ctx, http.StatusBadRequest,
				"Cannot update protected fields: "+strings.Join(protectedErr.Fields, ", "),
				"PROTECTED_FIELDS_UPDATE_ATTEMPTED")

		case errors.As(err, &jsonErr):
			RespondErrorCode(ctx, http.StatusBadRequest,
				fmt.Sprintf("Field '%s' must be a valid JSON object or array", jsonErr.Field),
				"INVALID_JSON_FIELD")

		case errors.Is(err, profile.ErrNoValidFields):
			RespondErrorCode(ctx, http.StatusBadRequest,
				"No valid fields provided for update",
				"NO_VALID_FIELDS")

		case errors.Is(err, user.ErrNotFound):
			RespondNotFound(ctx, "User not found")

		default:
			RespondInternal(ctx, err)
		}
		return
	}

	ctx.JSON(http.StatusOK, updated)
}
