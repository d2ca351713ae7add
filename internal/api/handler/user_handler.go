package handler

import (
	"log/slog"
	"net/http"

	"sahaya_api/internal/api/middleware"
	"sahaya_api/internal/app/service"
	"sahaya_api/internal/common"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
)

type UserHandler struct {
	userService *service.UserService
	auth        *AuthHandler
	tokenAuth   *jwtauth.JWTAuth
	logger      *slog.Logger
}

func NewUserHandler(userService *service.UserService, auth *AuthHandler, tokenAuth *jwtauth.JWTAuth, logger *slog.Logger) *UserHandler {
	return &UserHandler{userService: userService, auth: auth, tokenAuth: tokenAuth, logger: logger}
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

type totalUsersResponse struct {
	TotalUsers int64 `json:"totalUsers"`
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/get/{id}", h.getUser)
	r.Post("/signout", h.auth.signout)
	r.Post("/signin", h.auth.signin)
	r.Post("/forgotPassword", h.forgotPassword)
	r.Post("/resetPassword/{token}", h.resetPassword)
	r.Get("/getall", h.getTotalUsers)

	r.Group(func(protected chi.Router) {
		protected.Use(middleware.Session(h.tokenAuth))
		protected.Put("/update/{userId}", h.updateUser)

		protected.With(middleware.RequireAdmin(h.userService, h.logger)).
			Put("/updaterole", h.updateRole)
	})
}

func (h *UserHandler) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetUserByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) updateUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		common.RespondWithMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req service.UpdateUserRequest
	if err := common.DecodeJSON(w, r, &req); err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	user, err := h.userService.UpdateUser(r.Context(), identity, chi.URLParam(r, "userId"), req)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := common.DecodeJSON(w, r, &req); err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	to, err := h.auth.authService.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "Reset password link has been sent to "+to)
}

func (h *UserHandler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := common.DecodeJSON(w, r, &req); err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	if err := h.auth.authService.ResetPassword(r.Context(), chi.URLParam(r, "token"), req.Password); err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "Password has been reset successfully")
}

func (h *UserHandler) getTotalUsers(w http.ResponseWriter, r *http.Request) {
	n, err := h.userService.GetTotalUsers(r.Context())
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, totalUsersResponse{TotalUsers: n})
}

func (h *UserHandler) updateRole(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateRoleRequest
	if err := common.DecodeJSON(w, r, &req); err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	if err := h.userService.UpdateUserRole(r.Context(), req.UserID, req.NewRole); err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "User role updated successfully")
}
