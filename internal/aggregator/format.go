// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package aggregator

import (
	"fmt"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Display values are rendered in US English: grouped thousands, at most three
// fraction digits.

func newPrinter() *message.Printer {
	return message.NewPrinter(language.AmericanEnglish)
}

func formatDecimal(p *message.Printer, v float64) string {
	return p.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}

func formatInt(p *message.Printer, v int64) string {
	return p.Sprint(number.Decimal(v))
}

func formatCurrency(p *message.Printer, v float64) string {
	return "$" + formatDecimal(p, v)
}

// formatLargeNumber abbreviates millions and thousands to one decimal.
func formatLargeNumber(v int64) string {
	switch {
	case v >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(v)/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("%.1fK", float64(v)/1_000)
	default:
		return strconv.FormatInt(v, 10)
	}
}

// formatPlain renders a ratio with no trailing zeros.
func formatPlain(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
