// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package models

import "testing"

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"short", "****"},
		{"12345678", "****"},
		{"123456789", "****6789"},
		{"EAAGm0PX4ZCpsBA", "****psBA"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := MaskSecret(tt.in); got != tt.want {
				t.Errorf("MaskSecret(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBusinessRedacted(t *testing.T) {
	b := Business{
		Name:        "Acme",
		BigCommerce: BigCommerceConfig{StoreHash: "abc123", AccessToken: "bc-access-token", WebhookSecret: "whsec-123456"},
		Google:      GoogleConfig{ClientID: "client.apps", ClientSecret: "gsecret-value", AccessToken: "ya29.token", RefreshToken: "1//refresh"},
		Meta:        MetaConfig{AppID: "123", AppSecret: "meta-app-secret", AccessToken: "EAAG-token"},
	}

	r := b.Redacted()

	if r.BigCommerce.StoreHash != "abc123" || r.Google.ClientID != "client.apps" || r.Meta.AppID != "123" {
		t.Error("non-secret identifiers must survive redaction")
	}
	secrets := []string{
		r.BigCommerce.AccessToken, r.BigCommerce.WebhookSecret,
		r.Google.ClientSecret, r.Google.AccessToken, r.Google.RefreshToken,
		r.Meta.AppSecret, r.Meta.AccessToken,
	}
	for _, s := range secrets {
		if len(s) < 4 || s[:4] != "****" {
			t.Errorf("secret %q not masked", s)
		}
	}
	if b.BigCommerce.AccessToken != "bc-access-token" {
		t.Error("Redacted() must not modify the receiver")
	}
}

func TestApplyDefaults(t *testing.T) {
	s := BusinessSettings{Currency: "EUR"}
	s.ApplyDefaults()

	want := BusinessSettings{Timezone: "UTC", Currency: "EUR", DateFormat: "MM/DD/YYYY"}
	if s != want {
		t.Errorf("ApplyDefaults() = %+v, want %+v", s, want)
	}
}

func TestKeepSecretsFrom(t *testing.T) {
	old := Business{
		BigCommerce: BigCommerceConfig{AccessToken: "bc-access-token"},
		Meta:        MetaConfig{AccessToken: "EAAG-old-token", AppSecret: "meta-app-secret"},
	}

	next := old.Redacted()
	next.Meta.AccessToken = "EAAG-new-token"
	next.KeepSecretsFrom(&old)

	if next.BigCommerce.AccessToken != "bc-access-token" {
		t.Errorf("masked BigCommerce token not restored: %q", next.BigCommerce.AccessToken)
	}
	if next.Meta.AppSecret != "meta-app-secret" {
		t.Errorf("masked Meta secret not restored: %q", next.Meta.AppSecret)
	}
	if next.Meta.AccessToken != "EAAG-new-token" {
		t.Errorf("new Meta token overwritten: %q", next.Meta.AccessToken)
	}
	if next.Google.RefreshToken != "" {
		t.Errorf("empty secret changed: %q", next.Google.RefreshToken)
	}
}
