package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "service-key", time.Second)
}

func TestSignInWithPassword(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "service-key", r.Header.Get("apikey"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@b.test", body["email"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"bearer","user":{"id":"u1","email":"a@b.test"}}`))
	})

	session, err := client.SignInWithPassword(context.Background(), "a@b.test", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok", session.AccessToken)
	require.NotNil(t, session.User)
	assert.Equal(t, "u1", session.User.ID)
}

func TestSignInRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
	})

	_, err := client.SignInWithPassword(context.Background(), "a@b.test", "bad")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Invalid login credentials", apiErr.Message)
}

func TestGetUserSendsBearer(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":"u1","email":"t@b.test","user_metadata":{"role":"TEACHER"}}`))
	})

	user, err := client.GetUser(context.Background(), "user-token")
	require.NoError(t, err)
	assert.Equal(t, "TEACHER", user.UserMetadata["role"])
}

func TestCreateUserUsesServiceKey(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/admin/users", r.URL.Path)
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))
		var params CreateUserParams
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		assert.True(t, params.EmailConfirm)
		assert.Equal(t, "STUDENT", params.UserMetadata["role"])
		_, _ = w.Write([]byte(`{"id":"new-id","email":"s@b.test"}`))
	})

	user, err := client.CreateUser(context.Background(), CreateUserParams{
		Email:        "s@b.test",
		Password:     "secret123",
		EmailConfirm: true,
		UserMetadata: map[string]any{"role": "STUDENT"},
	})
	require.NoError(t, err)
	assert.Equal(t, "new-id", user.ID)
}

func TestCreateUserErrorMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"code":422,"error_code":"email_exists","msg":"A user with this email address has already been registered"}`))
	})

	_, err := client.CreateUser(context.Background(), CreateUserParams{Email: "x@b.test", Password: "p"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "A user with this email address has already been registered", apiErr.Message)
}

func TestUpdateAndDeleteUser(t *testing.T) {
	var calls []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodPut {
			_, _ = w.Write([]byte(`{"id":"u1","user_metadata":{"role":"ADMIN"}}`))
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	user, err := client.UpdateUserMetadata(context.Background(), "u1", map[string]any{"role": "ADMIN"})
	require.NoError(t, err)
	assert.Equal(t, "ADMIN", user.UserMetadata["role"])
	require.NoError(t, client.DeleteUser(context.Background(), "u1"))
	assert.Equal(t, []string{"PUT /auth/v1/admin/users/u1", "DELETE /auth/v1/admin/users/u1"}, calls)
}

func TestUnreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "k", 200*time.Millisecond)
	_, err := client.GetUser(context.Background(), "tok")
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestRequestContextBoundsCall(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := client.GetUser(ctx, "tok")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 900*time.Millisecond)
}

func TestDeleteMissingUserKeepsStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":404,"msg":"User not found"}`))
	})

	err := client.DeleteUser(context.Background(), "gone")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "User not found", apiErr.Message)
}
