package handler

import (
	"log/slog"
	"net/http"
	"time"

	"sahaya_api/internal/app/service"
	"sahaya_api/internal/common"
	"sahaya_api/internal/common/security"
	"sahaya_api/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

// SessionCookie controls how the access_token cookie is written.
type SessionCookie struct {
	Secure bool
	TTL    time.Duration
}

func (c SessionCookie) set(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     security.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.TTL.Seconds()),
		Expires:  time.Now().Add(c.TTL),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c SessionCookie) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     security.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

type authResponse struct {
	Message string           `json:"message"`
	User    model.PublicUser `json:"user"`
}

type AuthHandler struct {
	authService *service.AuthService
	cookie      SessionCookie
	logger      *slog.Logger
}

func NewAuthHandler(authService *service.AuthService, cookie SessionCookie, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, cookie: cookie, logger: logger}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/signup", h.signup)
	r.Post("/signin", h.signin)
	r.Post("/signout", h.signout)
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request) {
	var req service.SignUpRequest
	if err := common.DecodeJSON(w, r, &req); err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	res, err := h.authService.SignUp(r.Context(), req)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	h.cookie.set(w, res.Token)
	common.RespondWithJSON(w, http.StatusCreated, authResponse{
		Message: "User registered successfully",
		User:    res.User.Public(),
	})
}

func (h *AuthHandler) signin(w http.ResponseWriter, r *http.Request) {
	var req service.SignInRequest
	if err := common.DecodeJSON(w, r, &req); err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	res, err := h.authService.SignIn(r.Context(), req)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	h.cookie.set(w, res.Token)
	common.RespondWithJSON(w, http.StatusOK, authResponse{
		Message: "Signed in successfully",
		User:    res.User.Public(),
	})
}

// signout only drops the cookie. Issued tokens stay valid until they expire.
func (h *AuthHandler) signout(w http.ResponseWriter, r *http.Request) {
	h.cookie.clear(w)
	common.RespondWithMessage(w, http.StatusOK, "User has been signed out")
}
