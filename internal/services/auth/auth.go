package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"vltweb/internal/config"
	"vltweb/internal/lib/jwt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Service issues admin tokens. Login takes only a shared secret; the
// matching credential decides which role the token carries.
type Service struct {
	log         *slog.Logger
	credentials []config.Credential
	secret      string
	tokenTTL    time.Duration
}

func New(log *slog.Logger, credentials []config.Credential, secret string, tokenTTL time.Duration) *Service {
	return &Service{
		log:         log,
		credentials: credentials,
		secret:      secret,
		tokenTTL:    tokenTTL,
	}
}

// Login compares the secret against every configured credential and
// returns a signed token for the first match.
func (s *Service) Login(ctx context.Context, secret string) (string, error) {
	const op = "auth.Service.Login"
	log := s.log.With(slog.String("op", op))

	for _, cred := range s.credentials {
		if err := bcrypt.CompareHashAndPassword([]byte(cred.SecretHash), []byte(secret)); err != nil {
			continue
		}

		token, err := jwt.NewToken(cred.Role, s.secret, s.tokenTTL)
		if err != nil {
			log.Error("failed to sign token", slog.String("role", cred.Role))
			return "", fmt.Errorf("%s: %w", op, err)
		}

		log.Info("admin logged in", slog.String("role", cred.Role))

		return token, nil
	}

	log.Warn("login rejected")

	return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
}
