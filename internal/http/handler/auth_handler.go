package handler

import (
	"net/http"

	"github.com/straye-as/cbam-api/internal/auth"
	"github.com/straye-as/cbam-api/internal/domain"
	"go.uber.org/zap"
)

type AuthHandler struct {
	logger *zap.Logger
}

func NewAuthHandler(logger *zap.Logger) *AuthHandler {
	return &AuthHandler{logger: logger}
}

// Me returns the authenticated caller with the capabilities their roles grant
// @Summary Current user
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	roles := userCtx.Roles
	if roles == nil {
		roles = []string{}
	}
	respondJSON(w, http.StatusOK, domain.AuthUserDTO{
		ID:         userCtx.UserID,
		Name:       userCtx.DisplayName,
		Email:      userCtx.Email,
		Roles:      roles,
		AuthMethod: userCtx.AuthMethod,
		CanVerify:  userCtx.IsAdmin() || userCtx.HasRole(auth.RoleVerifier),
		IsAdmin:    userCtx.IsAdmin(),
	})
}
