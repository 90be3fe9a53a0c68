package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mealwell/api/internal/auth"
	"github.com/mealwell/api/internal/database"
	"github.com/mealwell/api/internal/handler"
	"golang.org/x/crypto/bcrypt"
)

// --- Mock AuthStore ---

type mockAuthStore struct {
	createUserFn     func(ctx context.Context, arg database.CreateUserParams) (database.User, error)
	getUserFn        func(ctx context.Context, id uuid.UUID) (database.User, error)
	getUserByEmailFn func(ctx context.Context, email string) (database.User, error)
}

func (m *mockAuthStore) CreateUser(ctx context.Context, arg database.CreateUserParams) (database.User, error) {
	return m.createUserFn(ctx, arg)
}

func (m *mockAuthStore) GetUser(ctx context.Context, id uuid.UUID) (database.User, error) {
	if m.getUserFn != nil {
		return m.getUserFn(ctx, id)
	}
	return database.User{}, pgx.ErrNoRows
}

func (m *mockAuthStore) GetUserByEmail(ctx context.Context, email string) (database.User, error) {
	if m.getUserByEmailFn != nil {
		return m.getUserByEmailFn(ctx, email)
	}
	return database.User{}, pgx.ErrNoRows
}

func setupAuthRouter(store *mockAuthStore) *chi.Mux {
	h := handler.NewAuthHandler(store, testJWTSecret)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// doRequest sends an unauthenticated JSON request.
func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

// --- Register ---

func TestAuthRegister_HappyPath(t *testing.T) {
	store := &mockAuthStore{
		createUserFn: func(ctx context.Context, arg database.CreateUserParams) (database.User, error) {
			if arg.Email != "asha@example.com" {
				t.Errorf("email: got %q (should be lowercased)", arg.Email)
			}
			if arg.Role != "CUSTOMER" {
				t.Errorf("role: got %q, want CUSTOMER default", arg.Role)
			}
			if err := bcrypt.CompareHashAndPassword([]byte(arg.PasswordHash), []byte("s3cret-pass")); err != nil {
				t.Errorf("password_hash does not verify: %v", err)
			}
			return database.User{
				ID:    uuid.New(),
				Email: arg.Email,
				Name:  arg.Name,
				Role:  arg.Role,
			}, nil
		},
	}
	router := setupAuthRouter(store)

	rr := doRequest(t, router, "POST", "/auth/register", map[string]string{
		"email":    "Asha@Example.com",
		"password": "s3cret-pass",
		"name":     "Asha",
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["access_token"] == "" || resp["refresh_token"] == "" {
		t.Error("expected token pair in response")
	}

	// The access token must round-trip through our own validation.
	claims, err := auth.ValidateToken(testJWTSecret, resp["access_token"].(string))
	if err != nil {
		t.Fatalf("validate issued token: %v", err)
	}
	if claims.Role != "CUSTOMER" {
		t.Errorf("token role: got %q", claims.Role)
	}
}

func TestAuthRegister_ShortPassword(t *testing.T) {
	router := setupAuthRouter(&mockAuthStore{})
	rr := doRequest(t, router, "POST", "/auth/register", map[string]string{
		"email":    "a@b.com",
		"password": "short",
		"name":     "A",
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestAuthRegister_DuplicateEmail(t *testing.T) {
	store := &mockAuthStore{
		createUserFn: func(ctx context.Context, arg database.CreateUserParams) (database.User, error) {
			return database.User{}, &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
		},
	}
	router := setupAuthRouter(store)
	rr := doRequest(t, router, "POST", "/auth/register", map[string]string{
		"email":    "taken@example.com",
		"password": "s3cret-pass",
		"name":     "Dup",
	})
	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusConflict, rr.Body.String())
	}
}

func TestAuthRegister_AdminRoleRejected(t *testing.T) {
	router := setupAuthRouter(&mockAuthStore{})
	rr := doRequest(t, router, "POST", "/auth/register", map[string]string{
		"email":    "a@b.com",
		"password": "s3cret-pass",
		"name":     "A",
		"role":     "ADMIN",
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

// --- Login ---

func testUser(t *testing.T, password string) database.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return database.User{
		ID:           uuid.New(),
		Email:        "asha@example.com",
		PasswordHash: string(hash),
		Name:         "Asha",
		Role:         "CUSTOMER",
	}
}

func TestAuthLogin_HappyPath(t *testing.T) {
	user := testUser(t, "s3cret-pass")
	store := &mockAuthStore{
		getUserByEmailFn: func(ctx context.Context, email string) (database.User, error) {
			if email == user.Email {
				return user, nil
			}
			return database.User{}, pgx.ErrNoRows
		},
	}
	router := setupAuthRouter(store)

	rr := doRequest(t, router, "POST", "/auth/login", map[string]string{
		"email":    "asha@example.com",
		"password": "s3cret-pass",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	userResp, ok := resp["user"].(map[string]interface{})
	if !ok || userResp["email"] != user.Email {
		t.Errorf("user in response: got %v", resp["user"])
	}
}

func TestAuthLogin_WrongPassword(t *testing.T) {
	user := testUser(t, "s3cret-pass")
	store := &mockAuthStore{
		getUserByEmailFn: func(ctx context.Context, email string) (database.User, error) {
			return user, nil
		},
	}
	router := setupAuthRouter(store)

	rr := doRequest(t, router, "POST", "/auth/login", map[string]string{
		"email":    "asha@example.com",
		"password": "wrong-pass",
	})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthLogin_UnknownEmail(t *testing.T) {
	router := setupAuthRouter(&mockAuthStore{})
	rr := doRequest(t, router, "POST", "/auth/login", map[string]string{
		"email":    "who@example.com",
		"password": "whatever1",
	})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

// --- Refresh ---

func TestAuthRefresh_HappyPath(t *testing.T) {
	user := testUser(t, "s3cret-pass")
	refresh, err := auth.GenerateRefreshToken(testJWTSecret, user.ID)
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}

	store := &mockAuthStore{
		getUserFn: func(ctx context.Context, id uuid.UUID) (database.User, error) {
			if id == user.ID {
				return user, nil
			}
			return database.User{}, pgx.ErrNoRows
		},
	}
	router := setupAuthRouter(store)

	rr := doRequest(t, router, "POST", "/auth/refresh", map[string]string{
		"refresh_token": refresh,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
}

func TestAuthRefresh_GarbageToken(t *testing.T) {
	router := setupAuthRouter(&mockAuthStore{})
	rr := doRequest(t, router, "POST", "/auth/refresh", map[string]string{
		"refresh_token": "not.a.jwt",
	})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}
