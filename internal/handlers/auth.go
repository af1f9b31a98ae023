package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shoplite/apiserver/internal/services"
	"github.com/shoplite/apiserver/types"
)

// AuthHandler provides token authentication endpoints.
type AuthHandler struct {
	auth *services.AuthService
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, auth *services.AuthService) {
	handler := NewAuthHandler(auth)

	r.Post("/login", handler.Login)
	r.With(handler.RequireAuth).Post("/logout", handler.Logout)
	r.With(handler.RequireAuth).Get("/user", handler.Me)
}

// RequireAuth resolves the bearer token and injects the identity into
// the request context. Requests without a valid token are rejected as
// unauthenticated before any role check can run.
func (h *AuthHandler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bearer, err := bearerToken(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthenticated.")
			return
		}

		user, token, err := h.auth.ResolveToken(r.Context(), bearer)
		if err != nil {
			if errors.Is(err, services.ErrUnauthenticated) {
				writeError(w, http.StatusUnauthorized, "Unauthenticated.")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to authenticate")
			return
		}

		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), user, token)))
	})
}

// RequireAdmin permits only identities holding the admin role. It must
// be mounted after RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthenticated.")
			return
		}

		if err := services.Authorize(user, types.RoleAdmin); err != nil {
			writeError(w, http.StatusForbidden, "Forbidden. Admin access required.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}

// Login verifies credentials and returns a fresh bearer token. The
// plaintext token is shown exactly once.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	fields := make(map[string][]string)
	if req.Email == "" {
		fields["email"] = append(fields["email"], "The email field is required.")
	} else if _, err := mail.ParseAddress(req.Email); err != nil {
		fields["email"] = append(fields["email"], "The email must be a valid email address.")
	}
	if req.Password == "" {
		fields["password"] = append(fields["password"], "The password field is required.")
	}
	if len(fields) > 0 {
		writeValidationErrors(w, fields)
		return
	}

	token, user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeValidationErrors(w, map[string][]string{
				"email": {"The provided credentials are incorrect."},
			})
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to authenticate")
		return
	}

	writeData(w, http.StatusOK, AuthResponse{Token: token, User: user})
}

// Logout revokes the token used for this request. Other sessions of the
// same user stay valid.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := tokenFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthenticated.")
		return
	}

	if err := h.auth.Logout(r.Context(), token.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to log out")
		return
	}

	writeData(w, http.StatusOK, MessageResponse{Message: "Successfully logged out."})
}

// Me returns the authenticated identity.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthenticated.")
		return
	}
	writeData(w, http.StatusOK, user)
}

func bearerToken(r *http.Request) (string, error) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}
