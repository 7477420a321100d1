package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// APIClient handles HTTP communication with the backend
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Response types matching backend

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type Tweet struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

// Signup creates a user and returns its access token
func (c *APIClient) Signup(username, email, password string) (string, error) {
	body := map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}

	resp, err := c.post("/auth/signup", body, "")
	if err != nil {
		return "", fmt.Errorf("signup request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", statusError("signup", resp)
	}

	var result TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return result.AccessToken, nil
}

// Login exchanges username and password for an access token using the
// OAuth2 password form
func (c *APIClient) Login(username, password string) (string, error) {
	form := url.Values{"username": {username}, "password": {password}}

	resp, err := c.httpClient.PostForm(c.baseURL+"/auth/login", form)
	if err != nil {
		return "", fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError("login", resp)
	}

	var result TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return result.AccessToken, nil
}

// PostTweet creates a tweet as the token's user
func (c *APIClient) PostTweet(token, text string) (*Tweet, error) {
	resp, err := c.post("/tweets/", map[string]string{"text": text}, token)
	if err != nil {
		return nil, fmt.Errorf("post tweet request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, statusError("post tweet", resp)
	}

	var tweet Tweet
	if err := json.NewDecoder(resp.Body).Decode(&tweet); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &tweet, nil
}

// Timeline lists a username's tweets, newest first
func (c *APIClient) Timeline(username string) ([]Tweet, error) {
	var tweets []Tweet
	if err := c.getJSON("/tweets/"+url.PathEscape(username)+"/timelines/tweets", "", &tweets); err != nil {
		return nil, err
	}
	return tweets, nil
}

// MyTweets lists the token user's tweets, newest first
func (c *APIClient) MyTweets(token string) ([]Tweet, error) {
	var tweets []Tweet
	if err := c.getJSON("/tweets/me", token, &tweets); err != nil {
		return nil, err
	}
	return tweets, nil
}

func (c *APIClient) getJSON(path, token string, v interface{}) error {
	resp, err := c.get(path, token)
	if err != nil {
		return fmt.Errorf("GET %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError("GET "+path, resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func statusError(op string, resp *http.Response) error {
	bodyBytes, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("%s failed (status %d): %s", op, resp.StatusCode, string(bodyBytes))
}

// HTTP helpers

func (c *APIClient) get(path string, token string) (*http.Response, error) {
	req, err := http.NewRequest("GET", c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.httpClient.Do(req)
}

func (c *APIClient) post(path string, body interface{}, token string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest("POST", c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.httpClient.Do(req)
}
