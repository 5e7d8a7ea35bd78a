// Copyright (C) 2025 Uptimer Authors.
// See LICENSE for copying information.

// Package timerange implements helpers for bounded query time ranges.
package timerange

import (
	"time"

	"github.com/zeebo/errs"
)

// Error is the default timerange errs class.
var Error = errs.Class("timerange")

// Keyword is a named query range length.
type Keyword string

// Supported range keywords.
const (
	Day   Keyword = "24h"
	Week  Keyword = "7d"
	Month Keyword = "30d"
)

var keywordSeconds = map[Keyword]int64{
	Day:   24 * 60 * 60,
	Week:  7 * 24 * 60 * 60,
	Month: 30 * 24 * 60 * 60,
}

// Seconds returns the length of the keyword's range in seconds.
func (keyword Keyword) Seconds() int64 { return keywordSeconds[keyword] }

// String implements fmt.Stringer.
func (keyword Keyword) String() string { return string(keyword) }

// Parse validates raw against the allowed keywords, substituting fallback
// when raw is empty.
func Parse(raw string, fallback Keyword, allowed ...Keyword) (Keyword, error) {
	if raw == "" {
		return fallback, nil
	}
	for _, keyword := range allowed {
		if raw == string(keyword) {
			return keyword, nil
		}
	}
	return "", Error.New("invalid range %q", raw)
}

// FloorMinute rounds t down to a whole minute and returns it as unix seconds.
// Query ranges end on minute boundaries so that repeated requests within the
// same minute observe the same data.
func FloorMinute(t time.Time) int64 {
	return t.Unix() / 60 * 60
}
