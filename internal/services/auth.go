package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shoplite/apiserver/internal/store"
	"github.com/shoplite/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

const tokenSecretBytes = 32

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	UpsertByEmail(ctx context.Context, user types.User) (types.User, error)
}

// TokenRepository defines persistence operations for bearer tokens.
type TokenRepository interface {
	Get(ctx context.Context, id int) (types.Token, error)
	Create(ctx context.Context, token types.Token) (types.Token, error)
	Delete(ctx context.Context, id int) error
}

// AuthService issues, resolves, and revokes opaque bearer tokens.
//
// A token is handed to the client exactly once as "<id>|<secret>"; only
// the SHA-256 hash of the secret is persisted. Resolution compares
// hashes in constant time.
type AuthService struct {
	users  UserRepository
	tokens TokenRepository
}

func NewAuthService(users UserRepository, tokens TokenRepository) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Login verifies the credentials and issues a new token bound to the
// user. Any credential failure yields ErrInvalidCredentials without
// revealing whether the account exists.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, types.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", types.User{}, ErrInvalidCredentials
		}
		return "", types.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", types.User{}, ErrInvalidCredentials
	}

	secret, err := newTokenSecret()
	if err != nil {
		return "", types.User{}, err
	}

	token, err := s.tokens.Create(ctx, types.Token{
		UserID:     user.ID,
		SecretHash: hashTokenSecret(secret),
	})
	if err != nil {
		return "", types.User{}, err
	}

	return fmt.Sprintf("%d|%s", token.ID, secret), user, nil
}

// ResolveToken resolves a plaintext bearer credential to the owning user
// and the token record it belongs to. Any failure yields
// ErrUnauthenticated.
func (s *AuthService) ResolveToken(ctx context.Context, bearer string) (types.User, types.Token, error) {
	id, secret, ok := splitBearer(bearer)
	if !ok {
		return types.User{}, types.Token{}, ErrUnauthenticated
	}

	token, err := s.tokens.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, types.Token{}, ErrUnauthenticated
		}
		return types.User{}, types.Token{}, err
	}

	if subtle.ConstantTimeCompare([]byte(hashTokenSecret(secret)), []byte(token.SecretHash)) != 1 {
		return types.User{}, types.Token{}, ErrUnauthenticated
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, types.Token{}, ErrUnauthenticated
		}
		return types.User{}, types.Token{}, err
	}

	return user, token, nil
}

// Logout revokes the single token used for the current request. Other
// tokens belonging to the same user stay valid.
func (s *AuthService) Logout(ctx context.Context, tokenID int) error {
	err := s.tokens.Delete(ctx, tokenID)
	if errors.Is(err, store.ErrNotFound) {
		// Already revoked; logout is idempotent.
		return nil
	}
	return err
}

// Authorize permits the user when it holds the required role. It assumes
// authentication already succeeded; an unauthenticated request must be
// rejected upstream with ErrUnauthenticated, never ErrForbidden.
func Authorize(user types.User, requiredRole string) error {
	if user.Role != requiredRole {
		return ErrForbidden
	}
	return nil
}

func newTokenSecret() (string, error) {
	var buf [tokenSecretBytes]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf[:]), nil
}

func hashTokenSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

func splitBearer(bearer string) (id int, secret string, ok bool) {
	rawID, secret, found := strings.Cut(bearer, "|")
	if !found || secret == "" {
		return 0, "", false
	}
	id, err := strconv.Atoi(rawID)
	if err != nil || id < 1 {
		return 0, "", false
	}
	return id, secret, true
}
