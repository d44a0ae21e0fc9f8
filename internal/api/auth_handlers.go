package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/example/marketplace/internal/api/middleware"
	"github.com/example/marketplace/internal/auth"
	"github.com/example/marketplace/internal/domain/cart"
	"github.com/example/marketplace/internal/domain/user"
)

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	users      *user.Service
	jwtService *auth.JWTService
	carts      *cart.Manager
}

func NewAuthHandlers(users *user.Service, jwtService *auth.JWTService, carts *cart.Manager) *AuthHandlers {
	return &AuthHandlers{
		users:      users,
		jwtService: jwtService,
		carts:      carts,
	}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	User    *user.User `json:"user"`
	Token   string     `json:"token"`
	Message string     `json:"message,omitempty"`
}

// Register creates a buyer or seller account and logs it in.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Role == "" {
		req.Role = string(user.RoleBuyer)
	}

	newUser, err := h.users.Register(r.Context(), req.Email, req.Password,
		req.FirstName, req.LastName, req.Phone, user.Role(req.Role))
	if err != nil {
		switch {
		case errors.Is(err, user.ErrEmailTaken):
			respondJSONError(w, "Email already registered", http.StatusConflict)
		case errors.Is(err, auth.ErrPasswordTooShort):
			respondJSONError(w, "Password must be at least 8 characters", http.StatusBadRequest)
		case errors.Is(err, user.ErrInvalidEmail), errors.Is(err, user.ErrInvalidRole):
			respondJSONError(w, err.Error(), http.StatusBadRequest)
		default:
			respondJSONError(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	token, err := h.issueToken(w, newUser, r)
	if err != nil {
		respondJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, AuthResponse{
		User:    newUser,
		Token:   token,
		Message: "Registration successful",
	})
}

// Login verifies credentials and issues a token.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	u, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrInvalidCredentials):
			respondJSONError(w, "Invalid email or password", http.StatusUnauthorized)
		case errors.Is(err, user.ErrAccountDisabled):
			respondJSONError(w, "Account is deactivated", http.StatusForbidden)
		default:
			respondJSONError(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	token, err := h.issueToken(w, u, r)
	if err != nil {
		respondJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, AuthResponse{
		User:    u,
		Token:   token,
		Message: "Login successful",
	})
}

// Logout clears the auth cookie and drops the caller's cart.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if claims, ok := middleware.GetUserFromContext(r.Context()); ok {
		h.carts.Drop(claims.UserID)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Logout successful",
	})
}

// Me returns the current authenticated user's information
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respondJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	u, err := h.users.Get(r.Context(), claims.UserID)
	if err != nil {
		respondJSONError(w, "User not found", http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, u)
}

// issueToken signs a token for the user and mirrors it into an HttpOnly
// cookie for browser clients. API clients use the token from the body.
func (h *AuthHandlers) issueToken(w http.ResponseWriter, u *user.User, r *http.Request) (string, error) {
	token, expiresAt, err := h.jwtService.GenerateToken(u.ID, u.Email, string(u.Role))
	if err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	return token, nil
}
