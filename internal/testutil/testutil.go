package testutil

import (
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dom/twitter-clone/internal/api"
	"github.com/dom/twitter-clone/internal/config"
	"github.com/dom/twitter-clone/internal/repository"
	"github.com/dom/twitter-clone/internal/repository/table"
	"github.com/dom/twitter-clone/internal/service"
	"golang.org/x/crypto/bcrypt"
)

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:             "0", // Random port
		Environment:      "test",
		AllowedOrigins:   []string{"http://localhost:5173"},
		SecretKey:        "test-secret-key-for-testing-only",
		AccessTokenTTL:   30 * time.Minute,
		BcryptCost:       bcrypt.MinCost, // Fast hashing for tests
		StoreBackend:     config.BackendMemory,
		UsersTable:       "Users",
		TweetsTable:      "Tweets",
		StoreMaxAttempts: 1,
		LogLevel:         "error",
		LogFormat:        "text",
	}
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	Repos    *repository.Repositories
	Services *service.Services
	Config   *config.Config
}

// NewTestServer starts the full router over in-memory tables
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	cfg := TestConfig()
	repos := table.NewMemoryRepositories(cfg)
	services := service.NewServices(repos, cfg)
	router := api.NewRouter(services, cfg)

	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		Repos:    repos,
		Services: services,
		Config:   cfg,
	}

	t.Cleanup(func() {
		server.Close()
	})

	return ts
}

// APIURL returns the full URL for a given path
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s%s", ts.Server.URL, path)
}
