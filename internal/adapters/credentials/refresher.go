package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/camr1993/fantasy-football-assistant-sub000/internal/domain/model"
)

// HTTPRefresher exchanges refresh tokens against an OAuth-style token
// endpoint.
type HTTPRefresher struct {
	http         *http.Client
	tokenURL     string
	clientID     string
	clientSecret string
	now          func() time.Time
}

// NewHTTPRefresher constructs a Refresher that posts to tokenURL.
func NewHTTPRefresher(tokenURL, clientID, clientSecret string) *HTTPRefresher {
	return &HTTPRefresher{
		http:         &http.Client{Timeout: 15 * time.Second},
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		now:          time.Now,
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// Refresh implements Refresher.
func (r *HTTPRefresher) Refresh(ctx context.Context, cred *model.Credential) (*model.Credential, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {cred.RefreshToken},
		"client_id":     {r.clientID},
		"client_secret": {r.clientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call token endpoint: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token endpoint returned %d", resp.StatusCode)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	fresh := &model.Credential{
		UserID:       cred.UserID,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    r.now().Add(time.Duration(tok.ExpiresIn) * time.Second),
	}
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = cred.RefreshToken
	}
	return fresh, nil
}
