package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/FACorreiaa/rotinaai-settings/config"
	"github.com/FACorreiaa/rotinaai-settings/internal/api"
	"github.com/FACorreiaa/rotinaai-settings/internal/types"
)

type contextKey string

const UserIDKey contextKey = "userID"

// Authenticate validates the HS256/384/512 bearer token issued by the auth
// service and puts the user id (user_id claim, else sub) in the context.
// Tokens without an exp claim are rejected.
func Authenticate(logger *slog.Logger, jwtCfg config.JWTConfig) func(next http.Handler) http.Handler {
	secretKey := []byte(jwtCfg.SecretKey)
	if len(secretKey) == 0 {
		logger.Error("FATAL: JWT Secret Key is not configured!")
		panic("JWT Secret Key cannot be empty")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
	}
	if jwtCfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(jwtCfg.Issuer))
	}
	parser := jwt.NewParser(opts...)
	keyFunc := func(*jwt.Token) (interface{}, error) { return secretKey, nil }

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := logger.With(slog.String("middleware", "Authenticate"))

			tokenString, msg := bearerToken(r)
			if msg != "" {
				l.WarnContext(ctx, "Rejected Authorization header", slog.String("reason", msg))
				api.ErrorResponse(w, r, http.StatusUnauthorized, msg)
				return
			}

			claims := &types.Claims{}
			if _, err := parser.ParseWithClaims(tokenString, claims, keyFunc); err != nil {
				l.WarnContext(ctx, "Token parsing/validation failed", slog.Any("error", err))
				api.ErrorResponse(w, r, http.StatusUnauthorized, tokenErrorMessage(err))
				return
			}

			if !api.VerifyAudience(claims.Audience, jwtCfg.Audience) {
				l.WarnContext(ctx, "Token audience mismatch", slog.String("expected", jwtCfg.Audience), slog.Any("actual", claims.Audience))
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid token audience")
				return
			}

			userID := claims.UserID
			if userID == "" {
				userID = claims.Subject
			}
			if userID == "" {
				l.WarnContext(ctx, "Token carries no user id")
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid token")
				return
			}

			ctx = WithUserID(ctx, userID)
			l.DebugContext(ctx, "Authentication successful", slog.String("userID", userID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, string) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", "Authorization header required"
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" || strings.Contains(token, " ") {
		return "", "Authorization header format must be Bearer {token}"
	}
	return token, ""
}

func tokenErrorMessage(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return "Token has expired"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "Malformed token"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "Invalid token signature"
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return "Invalid token issuer"
	default:
		return "Invalid or expired token"
	}
}

// GetUserIDFromContext returns the user id stored by Authenticate.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

// WithUserID returns ctx carrying userID, as Authenticate does.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}
