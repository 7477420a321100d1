package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/dom/twitter-clone/internal/api/middleware"
	"github.com/dom/twitter-clone/internal/domain"
	"github.com/dom/twitter-clone/internal/service"
	"github.com/go-chi/chi/v5"
)

type TweetHandler struct {
	tweetService *service.TweetService
}

func NewTweetHandler(tweetService *service.TweetService) *TweetHandler {
	return &TweetHandler{tweetService: tweetService}
}

type CreateTweetRequest struct {
	Text string `json:"text"`
}

type TweetResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

func toTweetResponse(t *domain.Tweet) TweetResponse {
	return TweetResponse{
		ID:        t.ID,
		UserID:    t.UserID,
		Username:  t.Username,
		Text:      t.Text,
		CreatedAt: t.CreatedAt,
	}
}

func writeTweets(w http.ResponseWriter, tweets []*domain.Tweet) {
	resp := make([]TweetResponse, len(tweets))
	for i, t := range tweets {
		resp[i] = toTweetResponse(t)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		middleware.Unauthorized(w)
		return
	}

	var req CreateTweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tweet, err := h.tweetService.Create(r.Context(), user, service.CreateTweetInput{Text: req.Text})
	if err != nil {
		writeError(w, r, "tweets.Create", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTweetResponse(tweet))
}

func (h *TweetHandler) List(w http.ResponseWriter, r *http.Request) {
	tweets, err := h.tweetService.List(r.Context())
	if err != nil {
		writeError(w, r, "tweets.List", err)
		return
	}
	writeTweets(w, tweets)
}

func (h *TweetHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		middleware.Unauthorized(w)
		return
	}

	tweets, err := h.tweetService.ListMine(r.Context(), user)
	if err != nil {
		writeError(w, r, "tweets.ListMine", err)
		return
	}
	writeTweets(w, tweets)
}

func (h *TweetHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	tweets, err := h.tweetService.ListByUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, r, "tweets.ListByUser", err)
		return
	}
	writeTweets(w, tweets)
}

// ListByUsername serves /tweets/{idOrUsername}/timelines/tweets.
func (h *TweetHandler) ListByUsername(w http.ResponseWriter, r *http.Request) {
	tweets, err := h.tweetService.ListByUsername(r.Context(), chi.URLParam(r, "idOrUsername"))
	if err != nil {
		writeError(w, r, "tweets.ListByUsername", err)
		return
	}
	writeTweets(w, tweets)
}

func (h *TweetHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	tweet, err := h.tweetService.GetByID(r.Context(), chi.URLParam(r, "idOrUsername"))
	if err != nil {
		writeError(w, r, "tweets.GetByID", err)
		return
	}
	writeJSON(w, http.StatusOK, toTweetResponse(tweet))
}

func (h *TweetHandler) Get(w http.ResponseWriter, r *http.Request) {
	// chi matches on the raw path, so an escaped '+' in the offset arrives as %2B.
	createdAt, err := url.PathUnescape(chi.URLParam(r, "createdAt"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid created_at")
		return
	}

	tweet, err := h.tweetService.Get(r.Context(), chi.URLParam(r, "idOrUsername"), createdAt)
	if err != nil {
		writeError(w, r, "tweets.Get", err)
		return
	}
	writeJSON(w, http.StatusOK, toTweetResponse(tweet))
}
