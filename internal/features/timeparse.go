// PostPredict - Social Media Post Performance Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpredict

package features

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// timeLayouts are tried in order when parsing textual timestamps. Fractional
// seconds after the seconds field parse under every layout that has one.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05-0700",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"Jan 2, 2006 3:04 PM",
	"Jan 2, 2006",
	"2 Jan 2006",
	time.RFC1123Z,
	time.RFC1123,
}

// parseTime converts a cell to a time, keeping any zone offset in the text.
// The zero time marks a missing or unparsable value.
//
// Numeric cells are read as Unix seconds.
func parseTime(v any) time.Time {
	switch x := v.(type) {
	case time.Time:
		return x
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return time.Time{}
		}
		sec, frac := math.Modf(x)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC()
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return time.Time{}
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
		if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.Unix(sec, 0).UTC()
		}
	}
	return time.Time{}
}

// parseLeadingHour returns the integer before the first ':' in s.
func parseLeadingHour(s string) (int, bool) {
	token, _, _ := strings.Cut(strings.TrimSpace(s), ":")
	h, err := strconv.Atoi(strings.TrimSpace(token))
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	return h, true
}
