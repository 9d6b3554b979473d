package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"golang-deal-scout/internal/pipeline/dto"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// AnonymousUser is the actor recorded when authentication is disabled.
const AnonymousUser = "anonymous"

// Session identifies the caller of a request.
type Session struct {
	Subject string
	Email   string
}

// Actor is the name written to audit records and notes.
func (s Session) Actor() string {
	if s.Email != "" {
		return s.Email
	}
	return s.Subject
}

type sessionKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext returns the request session, or the anonymous session.
func SessionFromContext(ctx context.Context) Session {
	if s, ok := ctx.Value(sessionKey{}).(Session); ok {
		return s
	}
	return Session{Subject: AnonymousUser}
}

func actor(c echo.Context) string {
	return SessionFromContext(c.Request().Context()).Actor()
}

// SessionMiddleware authenticates HS256 bearer tokens signed with secret.
// With an empty secret every request runs as the anonymous user.
func SessionMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session := Session{Subject: AnonymousUser}
			if secret != "" {
				s, err := parseBearer(c.Request().Header.Get(echo.HeaderAuthorization), secret)
				if err != nil {
					return c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: err.Error()})
				}
				session = s
			}
			c.SetRequest(c.Request().WithContext(WithSession(c.Request().Context(), session)))
			return next(c)
		}
	}
}

func parseBearer(header, secret string) (Session, error) {
	raw, ok := strings.CutPrefix(strings.TrimSpace(header), "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return Session{}, errors.New("missing bearer token")
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return Session{}, errors.New("invalid token")
	}

	sub, _ := claims.GetSubject()
	if sub == "" {
		return Session{}, errors.New("token has no subject")
	}
	email, _ := claims["email"].(string)
	return Session{Subject: sub, Email: email}, nil
}
