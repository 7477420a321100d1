package handlers_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/dom/twitter-clone/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupLoginTweetFlow(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp := postJSON(t, ts.APIURL("/auth/signup"), map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "password123",
	})
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
	resp.Body.Close()

	resp, err := http.PostForm(ts.APIURL("/auth/login"), url.Values{
		"username": {"alice"},
		"password": {"password123"},
	})
	require.NoError(t, err)
	var login testutil.TokenResponse
	testutil.AssertJSONResponse(t, resp, &login)
	resp.Body.Close()
	require.NotEmpty(t, login.AccessToken)

	testutil.CreateTweet(t, ts, login.AccessToken, "hello")

	req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/tweets/me"), nil, login.AccessToken)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var mine []tweetResponse
	testutil.AssertJSONResponse(t, resp, &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, "hello", mine[0].Text)
	assert.Equal(t, "alice", mine[0].Username)
}

func TestHealth(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp, err := http.Get(ts.APIURL("/health"))
	require.NoError(t, err)
	defer resp.Body.Close()

	testutil.AssertStatusCode(t, resp, http.StatusOK)
	assert.Equal(t, "OK", testutil.ReadBody(t, resp))
}

func TestCORSPreflight(t *testing.T) {
	ts := testutil.NewTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.APIURL("/tweets/"), nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}
