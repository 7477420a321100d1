package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/dom/twitter-clone/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewBuffer(b))
	require.NoError(t, err)
	return resp
}

func TestAuthHandler_Signup(t *testing.T) {
	ts := testutil.NewTestServer(t)
	testutil.NewUserBuilder().WithUsername("existing").WithEmail("taken@example.com").Build(t, ts.Repos)

	tests := []struct {
		name           string
		request        map[string]interface{}
		expectedStatus int
		expectedDetail string
	}{
		{
			name: "successful signup",
			request: map[string]interface{}{
				"username": "newuser",
				"email":    "newuser@example.com",
				"password": "password123",
				"bio":      "hello there",
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "email already taken",
			request: map[string]interface{}{
				"username": "someoneelse",
				"email":    "taken@example.com",
				"password": "password123",
			},
			expectedStatus: http.StatusBadRequest,
			expectedDetail: "could not sign up",
		},
		{
			name: "invalid email",
			request: map[string]interface{}{
				"username": "newuser2",
				"email":    "nope",
				"password": "password123",
			},
			expectedStatus: http.StatusBadRequest,
			expectedDetail: "validation failed",
		},
		{
			name: "short password",
			request: map[string]interface{}{
				"username": "newuser3",
				"email":    "newuser3@example.com",
				"password": "short",
			},
			expectedStatus: http.StatusBadRequest,
			expectedDetail: "validation failed",
		},
		{
			name:           "empty request body",
			request:        map[string]interface{}{},
			expectedStatus: http.StatusBadRequest,
			expectedDetail: "validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, ts.APIURL("/auth/signup"), tt.request)
			defer resp.Body.Close()

			if tt.expectedDetail != "" {
				testutil.AssertErrorResponse(t, resp, tt.expectedStatus, tt.expectedDetail)
				return
			}

			testutil.AssertStatusCode(t, resp, tt.expectedStatus)
			var result testutil.TokenResponse
			testutil.AssertJSONResponse(t, resp, &result)
			assert.NotEmpty(t, result.AccessToken)
			assert.Equal(t, "bearer", result.TokenType)
		})
	}
}

func TestAuthHandler_Signup_MalformedJSON(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp, err := http.Post(ts.APIURL("/auth/signup"), "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()

	testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "invalid request body")
}

func TestAuthHandler_Login(t *testing.T) {
	ts := testutil.NewTestServer(t)
	testutil.NewUserBuilder().WithUsername("alice").WithPassword("password123").Build(t, ts.Repos)

	tests := []struct {
		name           string
		username       string
		password       string
		expectedStatus int
	}{
		{name: "successful login", username: "alice", password: "password123", expectedStatus: http.StatusOK},
		{name: "wrong password", username: "alice", password: "wrongpassword", expectedStatus: http.StatusUnauthorized},
		{name: "unknown username", username: "nobody", password: "password123", expectedStatus: http.StatusUnauthorized},
		{name: "missing password", username: "alice", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name+" form", func(t *testing.T) {
			resp, err := http.PostForm(ts.APIURL("/auth/login"), url.Values{
				"username": {tt.username},
				"password": {tt.password},
			})
			require.NoError(t, err)
			defer resp.Body.Close()

			testutil.AssertStatusCode(t, resp, tt.expectedStatus)
			if tt.expectedStatus == http.StatusOK {
				var result testutil.TokenResponse
				testutil.AssertJSONResponse(t, resp, &result)
				assert.NotEmpty(t, result.AccessToken)
			}
		})

		t.Run(tt.name+" json", func(t *testing.T) {
			resp := postJSON(t, ts.APIURL("/auth/login"), map[string]string{
				"username": tt.username,
				"password": tt.password,
			})
			defer resp.Body.Close()

			testutil.AssertStatusCode(t, resp, tt.expectedStatus)
		})
	}
}

func TestAuthHandler_Login_SameErrorShape(t *testing.T) {
	ts := testutil.NewTestServer(t)
	testutil.NewUserBuilder().WithUsername("alice").WithPassword("password123").Build(t, ts.Repos)

	login := func(username, password string) string {
		resp, err := http.PostForm(ts.APIURL("/auth/login"), url.Values{
			"username": {username},
			"password": {password},
		})
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		return testutil.ReadBody(t, resp)
	}

	assert.Equal(t, login("alice", "wrongpassword"), login("nobody", "password123"))
}
