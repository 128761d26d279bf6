package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"liquidhire/internal/models"
	"liquidhire/internal/repositories"
)

func newAuthEndpointDB(t *testing.T) (*AuthHandler, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return NewAuthHandler(&repositories.UserRepository{DB: db}, "test-secret"), db
}

func TestRegisterAndLogin(t *testing.T) {
	h, _ := newAuthEndpointDB(t)

	rec := performJSON(http.HandlerFunc(h.RegisterHandler), "/api/auth/register",
		`{"username": "ada", "email": "ada@example.com", "password": "hunter22"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = performJSON(http.HandlerFunc(h.LoginHandler), "/api/auth/login",
		`{"username": "ada", "password": "hunter22"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d", rec.Code)
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("empty token")
	}

	token, err := jwt.Parse(resp.Token, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	claims := token.Claims.(jwt.MapClaims)
	if claims["username"] != "ada" {
		t.Errorf("username claim = %v", claims["username"])
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	h, _ := newAuthEndpointDB(t)

	body := `{"username": "ada", "email": "ada@example.com", "password": "hunter22"}`
	if rec := performJSON(http.HandlerFunc(h.RegisterHandler), "/api/auth/register", body); rec.Code != http.StatusCreated {
		t.Fatalf("first register status = %d", rec.Code)
	}
	if rec := performJSON(http.HandlerFunc(h.RegisterHandler), "/api/auth/register", body); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register status = %d, want 409", rec.Code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	h, _ := newAuthEndpointDB(t)

	performJSON(http.HandlerFunc(h.RegisterHandler), "/api/auth/register",
		`{"username": "ada", "email": "ada@example.com", "password": "hunter22"}`)

	rec := performJSON(http.HandlerFunc(h.LoginHandler), "/api/auth/login",
		`{"username": "ada", "password": "wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRegisterRequiresAllFields(t *testing.T) {
	h, _ := newAuthEndpointDB(t)

	rec := performJSON(http.HandlerFunc(h.RegisterHandler), "/api/auth/register",
		`{"username": "ada"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
