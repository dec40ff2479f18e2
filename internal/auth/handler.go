package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Yaroslav326/TaskManagement/internal/transport"
	"github.com/Yaroslav326/TaskManagement/pkg/logger"
)

type ServiceAPI interface {
	Login(dto LoginDTO) (TokenResponse, error)
	Register(dto RegisterDTO) (TokenResponse, error)
	ValidateToken(tokenString string) (*Claims, error)
	GetUserByID(ctx context.Context, userID int64) (*User, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.Service.Login(dto)
	if err != nil {
		h.Logger.Error("authentication failed", "error", err)

		switch {
		case errors.Is(err, ErrInvalidCredentials):
			h.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		default:
			if _, ok := err.(ValidationError); ok {
				h.WriteError(w, http.StatusBadRequest, err.Error())
			} else {
				h.WriteError(w, http.StatusInternalServerError, "internal server error")
			}
		}
		return
	}

	h.setTokenCookie(w, resp.Token)
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.Service.Register(dto)
	if err != nil {
		h.Logger.Error("registration failed", "error", err, "email", dto.Email)

		switch {
		case errors.Is(err, ErrEmailTaken):
			h.WriteError(w, http.StatusConflict, err.Error())
		default:
			if _, ok := err.(ValidationError); ok {
				h.WriteError(w, http.StatusBadRequest, err.Error())
			} else {
				h.WriteError(w, http.StatusInternalServerError, "internal server error")
			}
		}
		return
	}

	h.setTokenCookie(w, resp.Token)
	h.WriteJSON(w, http.StatusCreated, resp)
}

func (h *Handler) Logout(w http.ResponseWriter, _ *http.Request) {
	// Stateless tokens cannot be revoked server-side; clearing the cookie
	// is all logout can do.
	http.SetCookie(w, &http.Cookie{
		Name:     "jwt",
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "jwt",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})
}

// AuthMiddleware authenticates the request via the shared token extraction
// path and attaches the principal to the context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ExtractToken(r)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "authorization required")
			return
		}

		claims, err := h.Service.ValidateToken(token)
		if err != nil {
			h.Logger.Warn("token validation failed", "error", err)
			switch {
			case errors.Is(err, ErrTokenExpired):
				h.WriteError(w, http.StatusUnauthorized, "token expired")
			case errors.Is(err, ErrInvalidSignature):
				h.WriteError(w, http.StatusUnauthorized, "invalid token signature")
			default:
				h.WriteError(w, http.StatusUnauthorized, "invalid token")
			}
			return
		}

		user, err := h.Service.GetUserByID(r.Context(), claims.UserID)
		if err != nil {
			h.Logger.Error("failed to load principal", "user_id", claims.UserID, "error", err)
			h.WriteError(w, http.StatusUnauthorized, "user not found")
			return
		}

		ctx := ContextWithUser(r.Context(), user)
		ctx = logger.With(ctx, "user_id", user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
