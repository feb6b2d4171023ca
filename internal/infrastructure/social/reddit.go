package social

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/domain/rows"
	"github.com/bimakw/market-intel/internal/infrastructure/httpx"
)

// Reddit fetches new submissions from subreddits using an OAuth
// client-credentials token.
type Reddit struct {
	authURL   string
	apiURL    string
	clientID  string
	secret    string
	userAgent string
	postLimit int
	http      *httpx.Client

	token       string
	tokenExpiry time.Time
}

// NewReddit creates a Reddit API client.
func NewReddit(cfg config.SocialConfig, http *httpx.Client) *Reddit {
	return &Reddit{
		authURL:   "https://www.reddit.com",
		apiURL:    "https://oauth.reddit.com",
		clientID:  cfg.RedditClientID,
		secret:    cfg.RedditClientSecret,
		userAgent: cfg.RedditUserAgent,
		postLimit: cfg.RedditPostLimit,
		http:      http,
	}
}

// Enabled reports whether credentials are configured.
func (r *Reddit) Enabled() bool { return r.clientID != "" && r.secret != "" }

func (r *Reddit) authenticate(ctx context.Context) error {
	if r.token != "" && time.Now().Before(r.tokenExpiry) {
		return nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	headers := http.Header{
		"Authorization": {"Basic " + basicAuth(r.clientID, r.secret)},
		"User-Agent":    {r.userAgent},
	}

	var resp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := r.http.PostFormJSON(ctx, r.authURL+"/api/v1/access_token", headers, form, &resp); err != nil {
		return fmt.Errorf("reddit auth: %w", err)
	}
	if resp.AccessToken == "" {
		return fmt.Errorf("reddit auth: empty token")
	}

	r.token = resp.AccessToken
	r.tokenExpiry = time.Now().Add(time.Duration(resp.ExpiresIn-60) * time.Second)
	return nil
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				ID         string  `json:"id"`
				Author     string  `json:"author"`
				Title      string  `json:"title"`
				SelfText   string  `json:"selftext"`
				CreatedUTC float64 `json:"created_utc"`
				Score      int64   `json:"score"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// NewPosts fetches the newest submissions of one subreddit.
func (r *Reddit) NewPosts(ctx context.Context, subreddit string) ([]rows.SocialPost, error) {
	if err := r.authenticate(ctx); err != nil {
		return nil, err
	}

	params := url.Values{"limit": {strconv.Itoa(r.postLimit)}}
	headers := http.Header{
		"Authorization": {"Bearer " + r.token},
		"User-Agent":    {r.userAgent},
	}

	var listing redditListing
	target := r.apiURL + "/r/" + url.PathEscape(subreddit) + "/new.json"
	if err := r.http.GetJSON(ctx, target, params, headers, &listing); err != nil {
		return nil, fmt.Errorf("reddit listing r/%s: %w", subreddit, err)
	}

	now := time.Now().UTC()
	out := make([]rows.SocialPost, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		p := child.Data
		text := p.Title
		if p.SelfText != "" {
			text = p.Title + "\n" + p.SelfText
		}
		out = append(out, rows.SocialPost{
			PostID:             "reddit:" + p.ID,
			Platform:           "reddit",
			Author:             p.Author,
			Text:               text,
			PostedAt:           time.Unix(int64(p.CreatedUTC), 0).UTC(),
			Subreddit:          subreddit,
			Score:              p.Score,
			IngestionTimestamp: now,
		})
	}
	return out, nil
}

func basicAuth(user, pass string) string {
	return base64.StdEncoding.EncodeToString([]byte(user + ":" + pass))
}
