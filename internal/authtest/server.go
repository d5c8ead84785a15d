// Package authtest provides an in-process stand-in for the external
// authentication service, matching its wire contract exactly. It backs
// the auth client's tests and the cmd/authstub development server; the
// production deployment talks to the real service instead.
package authtest

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/perspectra/portal/internal/model"
)

type storedUser struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	Role         model.Role
	CreatedAt    time.Time
}

// Server is an in-memory credential store behind the auth HTTP contract
type Server struct {
	mu    sync.Mutex
	users map[string]*storedUser
}

// NewServer creates an empty auth server
func NewServer() *Server {
	return &Server{
		users: make(map[string]*storedUser),
	}
}

// Handler returns the HTTP handler exposing the auth routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("GET /api/ping", s.handlePing)
	return mux
}

// Seed registers an account directly, for test setup
func (s *Server) Seed(email, password, fullName string, role model.Role) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}

	norm := model.NormalizeEmail(email)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[norm] = &storedUser{
		ID:           uuid.NewString(),
		Email:        norm,
		PasswordHash: string(hash),
		FullName:     fullName,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	return nil
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string     `json:"email"`
		Password string     `json:"password"`
		FullName string     `json:"fullName"`
		Role     model.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "email and password required")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password required")
		return
	}

	role := req.Role
	if role == "" {
		role = model.RoleIndividual
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	norm := model.NormalizeEmail(req.Email)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[norm]; exists {
		writeError(w, http.StatusConflict, "Email already exists")
		return
	}
	s.users[norm] = &storedUser{
		ID:           uuid.NewString(),
		Email:        norm,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "User created"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string     `json:"email"`
		Password string     `json:"password"`
		Role     model.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "email and password required")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password required")
		return
	}

	s.mu.Lock()
	user, ok := s.users[model.NormalizeEmail(req.Email)]
	s.mu.Unlock()

	// Unknown email, role mismatch, and wrong password are deliberately
	// indistinguishable
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if req.Role != "" && user.Role != req.Role {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	name := user.FullName
	if name == "" {
		name = user.Email
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":        user.ID,
		"email":     user.Email,
		"name":      name,
		"role":      user.Role,
		"createdAt": user.CreatedAt,
	})
}

func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
