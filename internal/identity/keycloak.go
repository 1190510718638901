package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"evantra-web/internal/models"
)

// KeycloakProvider implements the Provider port against a Keycloak realm's
// standard OIDC endpoints.
type KeycloakProvider struct {
	issuerURL    string
	clientID     string
	clientSecret string
	redirectURL  string
	client       *http.Client
}

// NewKeycloakProvider creates a provider for the given realm issuer URL,
// e.g. https://auth.example.com/realms/evantra
func NewKeycloakProvider(issuerURL, clientID, clientSecret, redirectURL string) *KeycloakProvider {
	return &KeycloakProvider{
		issuerURL:    strings.TrimRight(issuerURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURL:  redirectURL,
		client:       &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *KeycloakProvider) AuthCodeURL(state string) string {
	params := url.Values{}
	params.Set("client_id", p.clientID)
	params.Set("redirect_uri", p.redirectURL)
	params.Set("response_type", "code")
	params.Set("scope", "openid profile email")
	params.Set("state", state)
	return p.issuerURL + "/protocol/openid-connect/auth?" + params.Encode()
}

func (p *KeycloakProvider) Exchange(ctx context.Context, code string) (*Token, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", p.redirectURL)
	return p.tokenRequest(ctx, form)
}

func (p *KeycloakProvider) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	return p.tokenRequest(ctx, form)
}

func (p *KeycloakProvider) EndSessionURL(idTokenHint, postLogoutRedirect string) string {
	params := url.Values{}
	params.Set("client_id", p.clientID)
	if idTokenHint != "" {
		params.Set("id_token_hint", idTokenHint)
	}
	if postLogoutRedirect != "" {
		params.Set("post_logout_redirect_uri", postLogoutRedirect)
	}
	return p.issuerURL + "/protocol/openid-connect/logout?" + params.Encode()
}

// tokenResponse is the issuer's token endpoint payload
type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	IDToken          string `json:"id_token"`
	ExpiresIn        int    `json:"expires_in"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (p *KeycloakProvider) tokenRequest(ctx context.Context, form url.Values) (*Token, error) {
	form.Set("client_id", p.clientID)
	if p.clientSecret != "" {
		form.Set("client_secret", p.clientSecret)
	}

	endpoint := p.issuerURL + "/protocol/openid-connect/token"
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: failed to decode token response: %v", models.ErrUnknown, err)
	}
	if resp.StatusCode != http.StatusOK || body.AccessToken == "" {
		msg := body.ErrorDescription
		if msg == "" {
			msg = body.Error
		}
		return nil, models.NewAPIError(resp.StatusCode, msg)
	}

	token := &Token{
		AccessToken:  body.AccessToken,
		RefreshToken: body.RefreshToken,
		IDToken:      body.IDToken,
	}
	if body.ExpiresIn > 0 {
		token.Expiry = time.Now().Add(time.Duration(body.ExpiresIn) * time.Second)
	}
	return token, nil
}
