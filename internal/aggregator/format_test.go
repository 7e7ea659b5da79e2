// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package aggregator

import (
	"errors"
	"testing"
)

func TestFormatLargeNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.0K"},
		{48200, "48.2K"},
		{999_999, "1000.0K"},
		{1_000_000, "1.0M"},
		{1_743_800, "1.7M"},
	}
	for _, tt := range tests {
		if got := formatLargeNumber(tt.in); got != tt.want {
			t.Errorf("formatLargeNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatCurrency(t *testing.T) {
	p := newPrinter()
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0"},
		{25.31, "$25.31"},
		{28450, "$28,450"},
		{1234567.5, "$1,234,567.5"},
	}
	for _, tt := range tests {
		if got := formatCurrency(p, tt.in); got != tt.want {
			t.Errorf("formatCurrency(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseChartKind(t *testing.T) {
	tests := []struct {
		in      string
		want    ChartKind
		wantErr bool
	}{
		{"", ChartAll, false},
		{"all", ChartAll, false},
		{"revenue", ChartRevenue, false},
		{"traffic", ChartTraffic, false},
		{"conversions", ChartConversions, false},
		{"pie", "", true},
	}
	for _, tt := range tests {
		got, err := ParseChartKind(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownChartKind) {
				t.Errorf("ParseChartKind(%q) error = %v, want ErrUnknownChartKind", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseChartKind(%q) = (%q, %v), want %q", tt.in, got, err, tt.want)
		}
	}
}
