package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Provider verifies a bearer credential against the external identity
// provider and returns its authoritative subject and email.
type Provider interface {
	Verify(ctx context.Context, token string) (subject, email string, err error)
}

// HTTPProvider speaks the hosted identity provider's user endpoint.
type HTTPProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPProvider(baseURL, apiKey string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type providerUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (p *HTTPProvider) Verify(ctx context.Context, token string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return "", "", fmt.Errorf("identity provider: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var user providerUser
	if err := json.Unmarshal(body, &user); err != nil {
		return "", "", err
	}
	if user.ID == "" {
		return "", "", fmt.Errorf("identity provider: empty subject")
	}
	return user.ID, user.Email, nil
}
