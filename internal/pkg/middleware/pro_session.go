package middleware

import (
	"net/http"
	"strings"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/culturepass/cp-stock/internal/pkg/jwt"
	"github.com/culturepass/cp-stock/internal/pkg/session"
	"github.com/culturepass/cp-stock/pkg/errors"
	"github.com/culturepass/cp-stock/pkg/response"
	"github.com/culturepass/cp-stock/pkg/status"
)

type ProSessionClaims struct {
	SessionID string `json:"sid"`
	gojwt.RegisteredClaims
}

// ProSession verifies the operator's bearer token and loads the matching
// session into the request context.
type ProSession struct {
	jsonWebToken *jwt.JSONWebToken
	session      session.Session
}

func NewProSessionMiddleware(jsonWebToken *jwt.JSONWebToken, sess session.Session) *ProSession {
	return &ProSession{
		jsonWebToken: jsonWebToken,
		session:      sess,
	}
}

func (m *ProSession) Verify(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		bearer := r.Header.Get("Authorization")
		tokenString, found := strings.CutPrefix(bearer, "Bearer ")
		if !found || tokenString == "" {
			response.JSON(w, http.StatusUnauthorized, response.RESTEnvelope{
				Status:  status.UNAUTHORIZED,
				Message: "missing bearer token",
			})
			return
		}

		claims := &ProSessionClaims{}
		if err := m.jsonWebToken.Parse(tokenString, claims); err != nil {
			ae := errors.Destruct(err)
			response.JSON(w, ae.HTTPStatusCode, response.RESTEnvelope{
				Status:  ae.Status,
				Message: ae.Message,
			})
			return
		}

		acc, err := m.session.Get(ctx, claims.SessionID)
		if err != nil {
			ae := errors.Destruct(err)
			response.JSON(w, ae.HTTPStatusCode, response.RESTEnvelope{
				Status:  ae.Status,
				Message: ae.Message,
			})
			return
		}

		next(w, r.WithContext(session.SetAccountToCtx(ctx, acc)))
	}
}
