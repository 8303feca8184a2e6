package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
	"golang.org/x/crypto/bcrypt"
)

func authApp(svc *Service) *fiber.App {
	app := fiber.New()
	RegisterRoutes(app.Group("/auth"), svc)
	return app
}

func postJSON(app *fiber.App, target string, body any) (*http.Response, error) {
	var buf bytes.Buffer
	json.NewEncoder(&buf).Encode(body)
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return app.Test(req)
}

func TestRegisterHandler(t *testing.T) {
	svc, mock, _ := testService(t)
	app := authApp(svc)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(pgxmock.AnyArg(), "bob@example.com", "bob", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	resp, err := postJSON(app, "/auth/register", RegisterRequest{
		Email:    "bob@example.com",
		Username: "bob",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var body struct {
		User   User          `json:"user"`
		Tokens TokenResponse `json:"tokens"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.User.Email != "bob@example.com" || body.Tokens.AccessToken == "" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestRegisterHandlerValidation(t *testing.T) {
	svc, _, _ := testService(t)
	app := authApp(svc)

	resp, _ := postJSON(app, "/auth/register", RegisterRequest{Email: "bob@example.com"})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestLoginHandler(t *testing.T) {
	svc, mock, _ := testService(t)
	app := authApp(svc)

	hash, _ := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	mock.ExpectQuery("SELECT id, email, username, password_hash, created_at").
		WithArgs("bob@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "username", "password_hash", "created_at"}).
			AddRow("user-1", "bob@example.com", "bob", string(hash), time.Now()))

	resp, _ := postJSON(app, "/auth/login", LoginRequest{
		Email:    "bob@example.com",
		Password: "hunter22",
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var tokens TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("unexpected tokens: %+v", tokens)
	}
}

func TestLoginHandlerBadCredentials(t *testing.T) {
	svc, mock, _ := testService(t)
	app := authApp(svc)

	hash, _ := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	mock.ExpectQuery("SELECT id, email, username, password_hash, created_at").
		WithArgs("bob@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "username", "password_hash", "created_at"}).
			AddRow("user-1", "bob@example.com", "bob", string(hash), time.Now()))

	resp, _ := postJSON(app, "/auth/login", LoginRequest{
		Email:    "bob@example.com",
		Password: "wrong",
	})
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestLoginHandlerMissingFields(t *testing.T) {
	svc, _, _ := testService(t)
	app := authApp(svc)

	resp, _ := postJSON(app, "/auth/login", LoginRequest{Email: "bob@example.com"})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestRefreshHandler(t *testing.T) {
	svc, mock, _ := testService(t)
	app := authApp(svc)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(pgxmock.AnyArg(), "bob@example.com", "bob", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	_, tokens, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "bob@example.com",
		Username: "bob",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	resp, _ := postJSON(app, "/auth/refresh", RefreshRequest{RefreshToken: tokens.RefreshToken})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp, _ = postJSON(app, "/auth/refresh", RefreshRequest{RefreshToken: tokens.RefreshToken})
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("replayed refresh token must 401, got %d", resp.StatusCode)
	}
}

func TestRefreshHandlerMissingToken(t *testing.T) {
	svc, _, _ := testService(t)
	app := authApp(svc)

	resp, _ := postJSON(app, "/auth/refresh", RefreshRequest{})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
