package middleware

import (
	"context"
	"net/http"
	"os"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/contactus/backend/internal/model"
	"github.com/labstack/echo/v4"
)

const actorKey = "actor"

type AuthMiddleware struct {
	authClient *auth.Client
}

func NewAuthMiddleware(ctx context.Context) (*AuthMiddleware, error) {
	projectID := os.Getenv("FIREBASE_PROJECT_ID")
	if projectID == "" {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "FIREBASE_PROJECT_ID is not set")
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID})
	if err != nil {
		return nil, err
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}
	return &AuthMiddleware{authClient: client}, nil
}

// Resolve attaches the caller's Actor to the context when a valid token
// is present, and lets anonymous requests through. The submit endpoint
// is public; ownership is recorded when the visitor happens to be
// signed in.
func (m *AuthMiddleware) Resolve(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if actor, ok := m.actorFromRequest(c); ok {
			c.Set(actorKey, actor)
		}
		return next(c)
	}
}

// RequireAuth rejects requests without a valid token.
func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		actor, ok := m.actorFromRequest(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}
		c.Set(actorKey, actor)
		return next(c)
	}
}

// RequireAdmin rejects requests whose token lacks the admin claim.
func (m *AuthMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		actor, ok := m.actorFromRequest(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}
		if !actor.Admin {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
		}
		c.Set(actorKey, actor)
		return next(c)
	}
}

func (m *AuthMiddleware) actorFromRequest(c echo.Context) (model.Actor, bool) {
	authz := c.Request().Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return model.Actor{}, false
	}
	tokenStr := strings.TrimPrefix(authz, "Bearer ")
	token, err := m.authClient.VerifyIDToken(c.Request().Context(), tokenStr)
	if err != nil {
		return model.Actor{}, false
	}
	actor := model.Actor{UID: token.UID}
	if v, ok := token.Claims["admin"].(bool); ok {
		actor.Admin = v
	}
	// The platform user id is carried as a custom claim set at account
	// provisioning time.
	if v, ok := token.Claims["user_id_num"].(float64); ok && v > 0 {
		id := uint64(v)
		actor.UserID = &id
	}
	return actor, true
}

// ActorFrom returns the Actor resolved for the request, or a zero Actor
// for anonymous callers.
func ActorFrom(c echo.Context) model.Actor {
	if actor, ok := c.Get(actorKey).(model.Actor); ok {
		return actor
	}
	return model.Actor{}
}

func (m *AuthMiddleware) Client() *auth.Client {
	return m.authClient
}
