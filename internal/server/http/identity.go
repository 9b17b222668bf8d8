package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/and161185/mybook/internal/errs"
	"github.com/and161185/mybook/internal/model"
)

// Identity headers set by the upstream gateway.
const (
	HeaderUserID     = "X-User-Id"
	HeaderSubscribed = "X-User-Subscribed"
	HeaderAssertion  = "X-Gateway-Assertion"
)

type ctxKey string

const identityKey ctxKey = "mybook.identity"

// WithIdentity stores the caller identity in context.
func WithIdentity(ctx context.Context, who model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, who)
}

// IdentityFromCtx fetches the caller identity from context.
func IdentityFromCtx(ctx context.Context) (model.Identity, bool) {
	v := ctx.Value(identityKey)
	if v == nil {
		return model.Identity{}, false
	}
	who, ok := v.(model.Identity)
	return who, ok && who.UserID != uuid.Nil
}

// requireIdentity rejects requests without a valid identity before any handler runs.
func (s *Server) requireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		who, err := s.identityFromRequest(c.Request)
		if err != nil {
			AbortWithError(c, fmt.Errorf("%w: %w", errs.ErrUnauthenticated, err))
			return
		}
		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), who))
		c.Next()
	}
}

// identityFromRequest reads the gateway headers and, when a gateway key is set,
// checks that the HS256 assertion was issued for the same user.
func (s *Server) identityFromRequest(r *http.Request) (model.Identity, error) {
	raw := strings.TrimSpace(r.Header.Get(HeaderUserID))
	if raw == "" {
		return model.Identity{}, errors.New("no user id header")
	}
	id, err := uuid.FromString(raw)
	if err != nil || id == uuid.Nil {
		return model.Identity{}, errors.New("bad user id")
	}

	subscribed := false
	if v := strings.TrimSpace(r.Header.Get(HeaderSubscribed)); v != "" {
		subscribed, err = strconv.ParseBool(v)
		if err != nil {
			return model.Identity{}, errors.New("bad subscribed header")
		}
	}

	if len(s.gatewayKey) > 0 {
		sub, err := s.assertionSubject(r.Header.Get(HeaderAssertion))
		if err != nil {
			return model.Identity{}, err
		}
		if sub != id {
			return model.Identity{}, errors.New("assertion subject mismatch")
		}
	}
	return model.Identity{UserID: id, Subscribed: subscribed}, nil
}

// assertionSubject verifies an HS256 gateway assertion and returns sub as UUID.
func (s *Server) assertionSubject(tok string) (uuid.UUID, error) {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return uuid.Nil, errors.New("no gateway assertion")
	}

	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(tok, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.gatewayKey, nil
	})
	if err != nil || !parsed.Valid {
		return uuid.Nil, errors.New("invalid assertion")
	}

	v := jwt.NewValidator(jwt.WithLeeway(30 * time.Second))
	if err := v.Validate(&claims); err != nil {
		return uuid.Nil, errors.New("assertion expired or not valid yet")
	}

	id, err := uuid.FromString(claims.Subject)
	if err != nil {
		return uuid.Nil, errors.New("bad subject")
	}
	return id, nil
}
