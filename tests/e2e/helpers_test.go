package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sweetshop/internal/config"
	"sweetshop/internal/domain/model"
	"sweetshop/internal/handler"
	infraRepo "sweetshop/internal/infra/repository"
	"sweetshop/internal/server"
	"sweetshop/internal/usecase"
	auth "sweetshop/internal/usecase/auth_usecase"

	"github.com/google/uuid"
)

const (
	testJWTSecret = "e2e_test_secret"

	adminUsername    = "admin"
	adminPassword    = "admin12345"
	customerUsername = "customer"
	customerPassword = "customer12345"
)

type TestClient struct {
	BaseURL string
	HTTP    *http.Client
	Store   *infraRepo.MemoryStore
}

type testIDGen struct{}

func (testIDGen) NewID() string { return uuid.NewString() }

type testClock struct{}

func (testClock) Now() time.Time { return time.Now() }

// インメモリstoreでアプリを丸ごと起動してhttptestで叩く
func NewTestClient(t *testing.T) *TestClient {
	t.Helper()

	cfg := config.Config{
		Port:      "0",
		Store:     config.StoreMemory,
		JWTSecret: testJWTSecret,
	}

	store := infraRepo.NewMemoryStore()

	idGen := testIDGen{}
	clock := testClock{}
	hasher := auth.NewBcryptPasswordHasher(4) // テストなのでcostは最小寄り
	verifier := auth.NewBcryptPasswordVerifier()
	issuer := auth.NewJWTIssuer(cfg.JWTSecret, 15*time.Minute)

	registerUC := auth.NewRegisterUserUsecase(store.Users(), hasher, idGen, clock)
	loginUC := auth.NewLoginUsecase(store.Users(), verifier, issuer, clock)
	sweetUC := usecase.NewSweetUsecase(store, store, store.AuditLogs(), idGen, clock)

	authH := handler.NewAuthHandler(registerUC, loginUC)
	sweetH := handler.NewSweetHandler(sweetUC)

	e := server.New(cfg, authH, sweetH)

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	//管理者は登録APIでは作れないので直接投入する
	seedUser(t, store, hasher, adminUsername, adminPassword, model.RoleAdmin)
	seedUser(t, store, hasher, customerUsername, customerPassword, model.RoleCustomer)

	return &TestClient{
		BaseURL: strings.TrimRight(srv.URL, "/"),
		HTTP: &http.Client{
			Timeout: 10 * time.Second,
		},
		Store: store,
	}
}

func seedUser(t *testing.T, store *infraRepo.MemoryStore, hasher auth.PasswordHasher, username, password string, role model.Role) {
	t.Helper()

	hash, err := hasher.Hash(password)
	if err != nil {
		t.Fatalf("hasher.Hash failed: %v", err)
	}

	now := time.Now()
	err = store.Users().Create(context.Background(), &model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("seed user %q failed: %v", username, err)
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

type UserDTO struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type JwtAccessToken struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type AuthLoginResponse struct {
	User  UserDTO        `json:"user"`
	Token JwtAccessToken `json:"token"`
}

type SweetDTO struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Quantity    int64   `json:"quantity"`
	Description string  `json:"description"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SweetRequest struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Quantity    int64   `json:"quantity"`
	Description string  `json:"description"`
}

type QuantityRequest struct {
	Quantity int64 `json:"quantity"`
}

func (c *TestClient) doJSON(
	ctx context.Context,
	t *testing.T,
	method string,
	path string,
	bearer string,
	bodyBytes []byte,
) (*http.Response, []byte) {
	t.Helper()

	var reqBody io.Reader
	if bodyBytes != nil {
		reqBody = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		t.Fatalf("http.NewRequest failed: %v", err)
	}

	if bodyBytes != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		t.Fatalf("HTTP.Do failed: %v", err)
	}

	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	return resp, data
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}
	return b
}

func requireStatus(t *testing.T, resp *http.Response, want int, body []byte) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("status=%d want=%d body=%s", resp.StatusCode, want, string(body))
	}
}

func mustDecodeError(t *testing.T, body []byte) ErrorResponse {
	t.Helper()
	var v ErrorResponse
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("json.Unmarshal(ErrorResponse) failed: %v body=%s", err, string(body))
	}
	return v
}

func mustDecodeUser(t *testing.T, body []byte) UserDTO {
	t.Helper()
	var v UserDTO
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("json.Unmarshal(UserDTO) failed: %v body=%s", err, string(body))
	}
	return v
}

func mustDecodeLogin(t *testing.T, body []byte) AuthLoginResponse {
	t.Helper()
	var v AuthLoginResponse
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("json.Unmarshal(AuthLoginResponse) failed: %v body=%s", err, string(body))
	}
	return v
}

func mustDecodeSweet(t *testing.T, body []byte) SweetDTO {
	t.Helper()
	var v SweetDTO
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("json.Unmarshal(SweetDTO) failed: %v body=%s", err, string(body))
	}
	return v
}

func mustDecodeSweets(t *testing.T, body []byte) []SweetDTO {
	t.Helper()
	var v []SweetDTO
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("json.Unmarshal([]SweetDTO) failed: %v body=%s", err, string(body))
	}
	return v
}

func login(t *testing.T, c *TestClient, ctx context.Context, username, password string) string {
	t.Helper()

	b := mustMarshal(t, LoginRequest{Username: username, Password: password})
	resp, body := c.doJSON(ctx, t, http.MethodPost, "/api/auth/login", "", b)
	requireStatus(t, resp, http.StatusOK, body)

	out := mustDecodeLogin(t, body)
	if strings.TrimSpace(out.Token.AccessToken) == "" {
		t.Fatalf("access token is empty: body=%s", string(body))
	}
	return out.Token.AccessToken
}

func adminLogin(t *testing.T, c *TestClient, ctx context.Context) string {
	t.Helper()
	return login(t, c, ctx, adminUsername, adminPassword)
}

func customerLogin(t *testing.T, c *TestClient, ctx context.Context) string {
	t.Helper()
	return login(t, c, ctx, customerUsername, customerPassword)
}

// 管理者tokenで商品を1件作って返す
func createSweet(t *testing.T, c *TestClient, ctx context.Context, adminToken string, req SweetRequest) SweetDTO {
	t.Helper()

	resp, body := c.doJSON(ctx, t, http.MethodPost, "/api/sweets", adminToken, mustMarshal(t, req))
	requireStatus(t, resp, http.StatusCreated, body)
	return mustDecodeSweet(t, body)
}
