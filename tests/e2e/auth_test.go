package e2e

import (
	"context"
	"net/http"
	"testing"
)

func TestRegisterThenLogin(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	//会員登録（201、roleは常にCUSTOMER）
	reg := RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "supersecret",
	}
	resp, body := c.doJSON(ctx, t, http.MethodPost, "/api/auth/register", "", mustMarshal(t, reg))
	requireStatus(t, resp, http.StatusCreated, body)

	user := mustDecodeUser(t, body)
	if user.Role != "CUSTOMER" {
		t.Fatalf("role=%q want=CUSTOMER", user.Role)
	}
	if user.ID == "" {
		t.Fatalf("user id is empty: body=%s", string(body))
	}

	//登録したユーザーでログインできる
	token := login(t, c, ctx, "alice", "supersecret")
	if token == "" {
		t.Fatal("token is empty")
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	reg := RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "supersecret"}
	resp, body := c.doJSON(ctx, t, http.MethodPost, "/api/auth/register", "", mustMarshal(t, reg))
	requireStatus(t, resp, http.StatusCreated, body)

	//同じusernameは409
	reg.Email = "bob2@example.com"
	resp, body = c.doJSON(ctx, t, http.MethodPost, "/api/auth/register", "", mustMarshal(t, reg))
	requireStatus(t, resp, http.StatusConflict, body)
}

func TestRegister_ValidationErrors(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  RegisterRequest
	}{
		{"short password", RegisterRequest{Username: "carol", Email: "carol@example.com", Password: "short"}},
		{"bad email", RegisterRequest{Username: "carol", Email: "not-an-email", Password: "supersecret"}},
		{"bad username", RegisterRequest{Username: "a b", Email: "carol@example.com", Password: "supersecret"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := c.doJSON(ctx, t, http.MethodPost, "/api/auth/register", "", mustMarshal(t, tc.req))
			requireStatus(t, resp, http.StatusBadRequest, body)
		})
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	b := mustMarshal(t, LoginRequest{Username: customerUsername, Password: "wrongpassword"})
	resp, body := c.doJSON(ctx, t, http.MethodPost, "/api/auth/login", "", b)
	requireStatus(t, resp, http.StatusUnauthorized, body)

	e := mustDecodeError(t, body)
	if e.Error == "" {
		t.Fatalf("error message is empty: body=%s", string(body))
	}
}

func TestSweets_RequireAuthentication(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	//tokenなしは401
	resp, body := c.doJSON(ctx, t, http.MethodGet, "/api/sweets", "", nil)
	requireStatus(t, resp, http.StatusUnauthorized, body)

	//壊れたtokenも401
	resp, body = c.doJSON(ctx, t, http.MethodGet, "/api/sweets", "not-a-jwt", nil)
	requireStatus(t, resp, http.StatusUnauthorized, body)
}
