package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/adapters/respond"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/domain"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/ports"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/metrics"
)

// AuthMiddleware is the single authentication and authorization gate. Every
// protected route goes through RequireRole or RequireToken.
type AuthMiddleware struct {
	verifier ports.TokenVerifier
	users    ports.UserRepository
	logger   *zap.Logger
}

func NewAuthMiddleware(verifier ports.TokenVerifier, users ports.UserRepository, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, users: users, logger: logger}
}

type contextKey string

const (
	userKey     contextKey = "user"
	identityKey contextKey = "identity"
)

// UserFromContext returns the local user placed by RequireRole.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(userKey).(*domain.User)
	return u, ok && u != nil
}

// IdentityFromContext returns the token identity placed by RequireToken or
// RequireRole.
func IdentityFromContext(ctx context.Context) (*ports.TokenIdentity, bool) {
	id, ok := ctx.Value(identityKey).(*ports.TokenIdentity)
	return id, ok && id != nil
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", domain.Unauthenticatedf("missing authorization header")
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", domain.Unauthenticatedf("invalid authorization header")
	}
	return strings.TrimSpace(token), nil
}

func (m *AuthMiddleware) authenticate(r *http.Request) (*ports.TokenIdentity, error) {
	raw, err := bearerToken(r)
	if err != nil {
		metrics.AuthFailures.WithLabelValues("missing_token").Inc()
		return nil, err
	}
	id, err := m.verifier.Verify(r.Context(), raw)
	if err != nil {
		metrics.AuthFailures.WithLabelValues(failureReason(err)).Inc()
		if domain.KindOf(err) == domain.KindUnauthenticated {
			m.logger.Debug("token rejected", zap.Error(err))
		}
		return nil, err
	}
	return id, nil
}

func failureReason(err error) string {
	switch domain.KindOf(err) {
	case domain.KindUnauthenticated:
		return "invalid_token"
	case domain.KindForbidden:
		return "no_subject"
	case domain.KindUnavailable:
		return "provider_unavailable"
	}
	return "not_configured"
}

// RequireToken only validates the bearer token. It serves endpoints that run
// before a local user exists, such as the login-time sync.
func (m *AuthMiddleware) RequireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := m.authenticate(r)
		if err != nil {
			respond.Error(w, r, m.logger, err)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), identityKey, id)))
	}
}

// RequireRole validates the token, loads the active local user and checks
// the role allow-list. An empty list admits any active user.
func (m *AuthMiddleware) RequireRole(roles []domain.Role, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := m.authenticate(r)
		if err != nil {
			respond.Error(w, r, m.logger, err)
			return
		}

		user, err := m.users.FindBySubject(r.Context(), id.Subject)
		if err != nil {
			if domain.KindOf(err) == domain.KindNotFound {
				metrics.AuthFailures.WithLabelValues("unknown_user").Inc()
				respond.Error(w, r, m.logger, domain.Forbiddenf("user is not registered"))
				return
			}
			respond.Error(w, r, m.logger, err)
			return
		}
		if !user.IsActive {
			metrics.AuthFailures.WithLabelValues("inactive_user").Inc()
			respond.Error(w, r, m.logger, domain.Forbiddenf("account is inactive"))
			return
		}
		if len(roles) > 0 && !user.Role.In(roles) {
			metrics.AuthFailures.WithLabelValues("insufficient_role").Inc()
			m.logger.Info("role mismatch",
				zap.String("user_id", user.ID),
				zap.String("role", string(user.Role)),
				zap.Any("required", roles))
			respond.Error(w, r, m.logger, domain.Forbiddenf("insufficient permissions"))
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, id)
		ctx = context.WithValue(ctx, userKey, user)
		next(w, r.WithContext(ctx))
	}
}
