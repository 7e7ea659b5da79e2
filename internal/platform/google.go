// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package platform

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GoogleTokenSource returns a token source for the tenant's Google grant.
// With a client ID, secret and refresh token the access token is refreshed
// on expiry; otherwise the stored access token is used as is.
//
// base carries outbound transport settings (timeouts, test servers) and is
// also used for refresh calls.
func GoogleTokenSource(creds GoogleCredentials, base *http.Client) oauth2.TokenSource {
	token := &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		TokenType:    "Bearer",
	}
	if creds.ClientID == "" || creds.ClientSecret == "" || creds.RefreshToken == "" {
		return oauth2.StaticTokenSource(token)
	}

	cfg := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     google.Endpoint,
	}
	// The source outlives any request, so it must not capture a request context.
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	return cfg.TokenSource(ctx, token)
}

// GoogleHTTPClient wraps base so every request carries a bearer token from ts.
func GoogleHTTPClient(ts oauth2.TokenSource, base *http.Client) *http.Client {
	transport := base.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &http.Client{
		Timeout: base.Timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.ReuseTokenSource(nil, ts),
			Base:   transport,
		},
	}
}
