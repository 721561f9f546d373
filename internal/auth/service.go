package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sharath018/workshop-checkin-backend/config"
	"github.com/sharath018/workshop-checkin-backend/internal/lib/logger/sl"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrNoVerifier   = errors.New("neither JWT_SECRET nor JWT_PUBLIC_KEY_PATH is configured")
)

// Service resolves credentials issued by the external identity provider into
// local users. It never issues tokens itself.
type Service interface {
	Resolve(ctx context.Context, token string) (Identity, error)
	GetUserByID(ctx context.Context, userID string) (*User, error)
}

type service struct {
	log     *slog.Logger
	repo    Repository
	keyFunc jwt.Keyfunc
	opts    []jwt.ParserOption
	admins  map[string]struct{}
}

// NewService builds a resolver that verifies RS256 tokens against a PEM public
// key when JWT_PUBLIC_KEY_PATH is set, and HS256 tokens against JWT_SECRET otherwise.
func NewService(log *slog.Logger, r Repository, cfg *config.Config) (Service, error) {
	const op = "auth.NewService"

	s := &service{
		log:    log,
		repo:   r,
		admins: make(map[string]struct{}, len(cfg.AdminEmails)),
	}
	for _, email := range cfg.AdminEmails {
		s.admins[strings.ToLower(email)] = struct{}{}
	}

	switch {
	case cfg.JWTPublicKeyPath != "":
		pem, err := os.ReadFile(cfg.JWTPublicKeyPath)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		key, err := jwt.ParseRSAPublicKeyFromPEM(pem)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		s.keyFunc = func(*jwt.Token) (interface{}, error) { return key, nil }
		s.opts = append(s.opts, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	case cfg.JWTSecret != "":
		secret := []byte(cfg.JWTSecret)
		s.keyFunc = func(*jwt.Token) (interface{}, error) { return secret, nil }
		s.opts = append(s.opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	default:
		return nil, fmt.Errorf("%s: %w", op, ErrNoVerifier)
	}

	if cfg.JWTIssuer != "" {
		s.opts = append(s.opts, jwt.WithIssuer(cfg.JWTIssuer))
	}

	return s, nil
}

// =============================
// Resolve
// =============================

func (s *service) Resolve(ctx context.Context, tokenStr string) (Identity, error) {
	const op = "auth.service.Resolve"
	log := s.log.With(slog.String("op", op))

	token, err := jwt.Parse(tokenStr, s.keyFunc, s.opts...)
	if err != nil || !token.Valid {
		return Identity{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return Identity{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	email, _ := claims["email"].(string)
	telegram, _ := claims["telegram_username"].(string)

	role := RoleUser
	if _, ok := s.admins[strings.ToLower(email)]; ok && email != "" {
		role = RoleAdmin
	}

	user, err := s.repo.FindByID(ctx, subject)
	switch {
	case errors.Is(err, ErrUserNotFound):
		user = &User{ID: subject, Email: email, Role: role}
		if telegram != "" {
			user.TelegramUsername = &telegram
		}
		if err := s.repo.Create(ctx, user); err != nil {
			log.Error("failed to create user", slog.String("user_id", subject), sl.Err(err))
			return Identity{}, fmt.Errorf("%s: %w", op, err)
		}
		// Another request may have registered the same subject first.
		stored, err := s.repo.FindByID(ctx, subject)
		if err != nil {
			return Identity{}, fmt.Errorf("%s: %w", op, err)
		}
		user = stored
		log.Info("registered new user", slog.String("user_id", subject), slog.String("role", string(user.Role)))
	case err != nil:
		return Identity{}, fmt.Errorf("%s: %w", op, err)
	default:
		fields := map[string]any{}
		if email != "" && email != user.Email {
			fields["email"] = email
			user.Email = email
		}
		if telegram != "" && (user.TelegramUsername == nil || *user.TelegramUsername != telegram) {
			fields["telegram_username"] = telegram
			user.TelegramUsername = &telegram
		}
		// Admin promotion is one-way; demotion is a manual database change.
		if role == RoleAdmin && user.Role != RoleAdmin {
			fields["role"] = RoleAdmin
			user.Role = RoleAdmin
		}
		if len(fields) > 0 {
			if err := s.repo.UpdateProfile(ctx, user.ID, fields); err != nil {
				return Identity{}, fmt.Errorf("%s: %w", op, err)
			}
		}
	}

	return Identity{UserID: user.ID, Email: user.Email, Role: user.Role}, nil
}

func (s *service) GetUserByID(ctx context.Context, userID string) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}
