package chat

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Yaroslav326/TaskManagement/internal"
	"github.com/Yaroslav326/TaskManagement/internal/auth"
	"github.com/go-chi/chi"
	"github.com/gorilla/websocket"
)

// Application close codes sent after a failed handshake. The upgrade
// always completes first so the client can read the code; HTTP rejections
// would be indistinguishable from network failures in browsers.
const (
	CloseMissingAuth      = 4001
	CloseTokenExpired     = 4002
	CloseInvalidSignature = 4003
	CloseRoomNotFound     = 4004
	CloseForbidden        = 4005
	CloseServerError      = 4500
)

// Authenticator is the slice of the auth service the gateway needs.
type Authenticator interface {
	ValidateToken(tokenString string) (*auth.Claims, error)
	GetUserByID(ctx context.Context, userID int64) (*auth.User, error)
}

// Gateway upgrades HTTP requests to chat websocket sessions.
type Gateway struct {
	authService Authenticator
	resolver    *Resolver
	registry    *Registry
	service     *Service
	upgrader    websocket.Upgrader
	logger      *slog.Logger

	authTimeout time.Duration
	client      clientConfig
}

type GatewayConfig struct {
	SendBufferSize   int
	WriteTimeout     time.Duration
	PongTimeout      time.Duration
	AuthTimeout      time.Duration
	MaxMessageLength int
	CheckOrigin      func(r *http.Request) bool
}

func NewGateway(authService Authenticator, resolver *Resolver, registry *Registry, service *Service, cfg GatewayConfig, logger *slog.Logger) *Gateway {
	return &Gateway{
		authService: authService,
		resolver:    resolver,
		registry:    registry,
		service:     service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     cfg.CheckOrigin,
		},
		logger:      logger,
		authTimeout: cfg.AuthTimeout,
		client: clientConfig{
			sendBufferSize: cfg.SendBufferSize,
			writeTimeout:   cfg.WriteTimeout,
			pongTimeout:    cfg.PongTimeout,
			// inbound frames carry JSON overhead on top of the message body
			maxFrameSize: int64(cfg.MaxMessageLength)*4 + 512,
		},
	}
}

// OriginChecker builds the websocket origin policy from the same comma
// separated origin list the REST CORS middleware uses. An empty list or
// "*" allows any origin; requests without an Origin header, non-browser
// clients, are always allowed.
func OriginChecker(allowedOrigins string) func(r *http.Request) bool {
	origins := map[string]bool{}
	allowAll := allowedOrigins == "" || allowedOrigins == "*"
	for _, o := range strings.Split(allowedOrigins, ",") {
		origins[strings.TrimSpace(o)] = true
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || allowAll {
			return true
		}
		return origins[origin]
	}
}

// HandleRoom is the websocket endpoint. The token is read from the
// handshake request, the room from the URL. Every failure after the
// upgrade maps to one application close code.
func (g *Gateway) HandleRoom(w http.ResponseWriter, r *http.Request) {
	roomName := chi.URLParam(r, "room")
	token := auth.ExtractToken(r)

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	principal, key, err := g.authenticate(r.Context(), token, roomName)
	if err != nil {
		g.reject(conn, err)
		return
	}

	g.serve(conn, principal, key)
}

// authenticate validates the token, loads the principal and resolves the
// room, all within the auth timeout.
func (g *Gateway) authenticate(ctx context.Context, token, roomName string) (*auth.User, ScopeKey, error) {
	ctx, cancel := context.WithTimeout(ctx, g.authTimeout)
	defer cancel()

	if token == "" {
		return nil, ScopeKey{}, auth.ErrMissingToken
	}

	claims, err := g.authService.ValidateToken(token)
	if err != nil {
		return nil, ScopeKey{}, err
	}

	principal, err := g.authService.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, ScopeKey{}, internal.NewInternalError("failed to load principal", err)
	}

	key, err := g.resolver.Resolve(ctx, roomName, principal.ID)
	if err != nil {
		return nil, ScopeKey{}, err
	}

	return principal, key, nil
}

func (g *Gateway) serve(conn *websocket.Conn, principal *auth.User, key ScopeKey) {
	client := newClient(conn, principal, key, g.service, g.client, g.logger)

	ctx, cancel := context.WithTimeout(context.Background(), g.authTimeout)
	err := g.service.Subscribe(ctx, key, client)
	cancel()
	if err != nil {
		g.logger.Error("failed to open chat session",
			"error", err,
			"company_id", key.CompanyID,
			"department_id", key.DepartmentID)
		g.closeWith(conn, CloseServerError, "internal error")
		return
	}

	go client.writePump()

	g.logger.Info("chat session opened",
		"user_id", principal.ID,
		"company_id", key.CompanyID,
		"department_id", key.DepartmentID)

	client.readPump(g.registry)

	g.logger.Info("chat session closed",
		"user_id", principal.ID,
		"company_id", key.CompanyID,
		"department_id", key.DepartmentID)
}

// reject maps a handshake failure to its close code and drops the
// connection.
func (g *Gateway) reject(conn *websocket.Conn, err error) {
	code := CloseServerError
	switch {
	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrMalformedToken):
		code = CloseMissingAuth
	case errors.Is(err, auth.ErrTokenExpired):
		code = CloseTokenExpired
	case errors.Is(err, auth.ErrInvalidSignature):
		code = CloseInvalidSignature
	case errors.Is(err, internal.ErrRoomNotFound), errors.Is(err, internal.ErrInvalidRoom):
		code = CloseRoomNotFound
	case errors.Is(err, internal.ErrNotMember), errors.Is(err, internal.ErrForbidden):
		code = CloseForbidden
	default:
		g.logger.Error("websocket handshake failed", "error", err)
	}

	g.closeWith(conn, code, err.Error())
}

func (g *Gateway) closeWith(conn *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(time.Second)
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason), deadline)
	conn.Close()
}
