// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package platform

import (
	"fmt"
	"time"
)

// Period is a relative reporting window ending now.
type Period string

// Supported periods.
const (
	Period24h Period = "24h"
	Period7d  Period = "7d"
	Period30d Period = "30d"
	Period90d Period = "90d"
)

// DefaultPeriod is used when a request does not name a period.
const DefaultPeriod = Period7d

// RefreshPeriods are the periods warmed by a refresh-all run.
var RefreshPeriods = []Period{Period24h, Period7d, Period30d}

// ParsePeriod validates s. An empty string yields DefaultPeriod.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case "":
		return DefaultPeriod, nil
	case Period24h, Period7d, Period30d, Period90d:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, s)
	}
}

// Days returns the number of calendar days covered by the period.
func (p Period) Days() int {
	switch p {
	case Period24h:
		return 1
	case Period30d:
		return 30
	case Period90d:
		return 90
	default:
		return 7
	}
}

// Range returns the [start, end] window for the period ending at now.
func (p Period) Range(now time.Time) (start, end time.Time) {
	return now.AddDate(0, 0, -p.Days()), now
}

// DateRange returns the window as YYYY-MM-DD strings in UTC, the format
// expected by the Google and Meta reporting APIs.
func (p Period) DateRange(now time.Time) (since, until string) {
	start, end := p.Range(now.UTC())
	return start.Format(time.DateOnly), end.Format(time.DateOnly)
}

func (p Period) String() string {
	return string(p)
}
