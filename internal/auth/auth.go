package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/Yaroslav326/TaskManagement/internal"
	"github.com/golang-jwt/jwt/v5"
)

// User is the authenticated principal attached to request contexts.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// DisplayName is the name shown to other principals, the email when no
// username is set.
func (u *User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

// Claims represents JWT token claims. Tokens are bearer-only with no
// refresh protocol: expiry forces a full re-login. There is no revocation
// list, so a leaked token stays valid until it expires.
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenGenerator issues and validates signed session tokens.
type TokenGenerator interface {
	GenerateToken(userID int64) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Auth failures are the shared application errors, so HTTP handlers and
// the websocket gateway branch on a single taxonomy.
var (
	ErrMissingToken       = internal.ErrMissingToken
	ErrMalformedToken     = internal.ErrMalformedToken
	ErrTokenExpired       = internal.ErrTokenExpired
	ErrInvalidSignature   = internal.ErrInvalidSignature
	ErrInvalidCredentials = internal.ErrInvalidCredentials
	ErrEmailTaken         = internal.ErrEmailTaken
)

type ctxKey string

const ContextUserKey ctxKey = "authUser"

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok
}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}

// ExtractToken pulls the bearer token from a request. The Authorization
// header ("Token <t>" or "Bearer <t>") wins over the jwt cookie. Both the
// REST middleware and the websocket handshake go through this single path.
func ExtractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && (parts[0] == "Token" || parts[0] == "Bearer") {
			return parts[1]
		}
		return ""
	}

	if cookie, err := r.Cookie("jwt"); err == nil {
		return cookie.Value
	}

	return ""
}
