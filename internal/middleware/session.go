package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SessionCookie is the name of the cookie carrying the signed session token
const SessionCookie = "session"

const sessionContextKey = "session_id"

// SessionClaims identify one dashboard session
type SessionClaims struct {
	SessionID uuid.UUID `json:"sid"`
	jwt.RegisteredClaims
}

// Sessions signs and verifies session tokens
type Sessions struct {
	secret []byte
	maxAge time.Duration
	secure bool
	logger *zap.Logger
}

// NewSessions creates a session manager. secure marks the cookie Secure.
func NewSessions(secret string, maxAge time.Duration, secure bool, logger *zap.Logger) *Sessions {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sessions{
		secret: []byte(secret),
		maxAge: maxAge,
		secure: secure,
		logger: logger,
	}
}

// Issue signs a token for sessionID
func (s *Sessions) Issue(sessionID uuid.UUID) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.maxAge)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse verifies a token and returns its session id
func (s *Sessions) Parse(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return uuid.Nil, errors.New("invalid session claims")
	}
	if claims.SessionID == uuid.Nil {
		return uuid.Nil, errors.New("session id missing from token")
	}
	return claims.SessionID, nil
}

// Middleware attaches the caller's session id to the context, starting a new
// session when the cookie is missing, expired or forged.
func (s *Sessions) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if cookie, err := c.Cookie(SessionCookie); err == nil {
			id, err := s.Parse(cookie.Value)
			if err == nil {
				c.Set(sessionContextKey, id)
				return next(c)
			}
			s.logger.Debug("discarding invalid session cookie", zap.Error(err))
		}

		id := uuid.New()
		token, err := s.Issue(id)
		if err != nil {
			return fmt.Errorf("failed to issue session: %w", err)
		}

		c.SetCookie(&http.Cookie{
			Name:     SessionCookie,
			Value:    token,
			Path:     "/",
			MaxAge:   int(s.maxAge.Seconds()),
			HttpOnly: true,
			Secure:   s.secure,
			SameSite: http.SameSiteLaxMode,
		})
		c.Set(sessionContextKey, id)
		return next(c)
	}
}

// GetSessionID extracts the session id from echo context
func GetSessionID(c echo.Context) (uuid.UUID, error) {
	id, ok := c.Get(sessionContextKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("session_id not found in context")
	}
	return id, nil
}
