package services

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// tokenResponse is the success payload of the OAuth2 token endpoint.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// Refresh exchanges a refresh token for a new access token and installs it in the session.
//
// When refreshToken is empty the session's stored refresh token is used. The call is sent
// without the bearer header. On success every later request carries the new token and the raw
// token endpoint body is returned. Failures are reported as a TidalRequestError.
func (s *TidalService) Refresh(ctx context.Context, refreshToken string) (Response, error) {
	if refreshToken == "" {
		refreshToken = s.Config().RefreshToken
	}
	if refreshToken == "" {
		return nil, NewMissingParametersError("No refresh token provided")
	}

	form := url.Values{}
	form.Set("client_id", s.Config().ClientID)
	form.Set("refresh_token", refreshToken)
	form.Set("grant_type", "refresh_token")
	form.Set("scope", refreshScope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &TidalError{Kind: KindRequest, Message: "failed to create request: " + err.Error(), Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	raw, err := s.send(req)
	if err != nil {
		return nil, err
	}

	var tr tokenResponse
	if err := raw.Decode(&tr); err != nil {
		return nil, &TidalError{Kind: KindRequest, Message: err.Error(), Status: http.StatusOK, Err: err}
	}
	if tr.AccessToken == "" {
		return nil, NewRequestError("token response did not include an access token", http.StatusOK, "")
	}
	if tr.RefreshToken == "" {
		tr.RefreshToken = refreshToken
	}

	s.setToken(tr.AccessToken, tr.RefreshToken)
	s.cfg.logger.Info("access token refreshed", "expires_in", tr.ExpiresIn)

	if s.cfg.onRefresh != nil {
		s.cfg.onRefresh(newOAuthToken(tr, raw))
	}

	return raw, nil
}

// setToken swaps the session credentials and the shared Authorization header together.
func (s *TidalService) setToken(accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.AccessToken = accessToken
	s.session.RefreshToken = refreshToken
	s.header.Set("Authorization", "Bearer "+accessToken)
}

// Token returns an [oauth2.Token] snapshot of the current session credentials.
func (s *TidalService) Token() *oauth2.Token {
	cfg := s.Config()
	return &oauth2.Token{
		AccessToken:  cfg.AccessToken,
		RefreshToken: cfg.RefreshToken,
		TokenType:    "Bearer",
	}
}

func newOAuthToken(tr tokenResponse, raw Response) *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		TokenType:    tr.TokenType,
	}
	if tr.ExpiresIn > 0 {
		tok.Expiry = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
		tok.ExpiresIn = int64(tr.ExpiresIn)
	}
	if extra, ok := raw.Object(); ok {
		return tok.WithExtra(extra)
	}
	return tok
}
