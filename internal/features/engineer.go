// PostPredict - Social Media Post Performance Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpredict

package features

import (
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"gonum.org/v1/gonum/stat"
)

// Derived column names.
const (
	ColPostingHour       = "posting_hour"
	ColPostingDay        = "posting_day"
	ColMonth             = "month"
	ColDayOfMonth        = "day_of_month"
	ColIsWeekend         = "is_weekend"
	ColPlatformEncoded   = "platform_encoded"
	ColContentEncoded    = "content_type_encoded"
	ColCaptionLength     = "caption_length"
	ColHashtagsCount     = "hashtags_count"
	ColEngagementRate    = "engagement_rate"
	ColRollingLikes      = "rolling_avg_likes"
	ColRollingEngagement = "rolling_avg_engagement"
	ColFollowerGrowth    = "follower_growth"
	ColPlatformContent   = "platform_content_interaction"
	ColHourPlatform      = "hour_platform_interaction"
)

// Raw column names recognised in uploads.
const (
	ColLikes         = "likes"
	ColComments      = "comments"
	ColShares        = "shares"
	ColPlatform      = "platform"
	ColContentType   = "content_type"
	ColCaption       = "caption"
	ColHashtags      = "hashtags"
	ColHashtagCount  = "hashtag_count"
	ColPostTime      = "post_time"
	ColFollowersPost = "followers_at_post_time"
	ColFollowers     = "followers"
	ColHour          = "hour"
	ColDayOfWeek     = "day_of_week"
)

// Config holds the tables and constants that drive feature engineering.
type Config struct {
	// TimeColumns is the priority list used to detect the time column.
	TimeColumns []string

	// FollowerColumns is the priority list used to detect the followers column.
	FollowerColumns []string

	// PlatformVocabulary maps lowercased platform names to codes.
	// Values outside the vocabulary encode to 0.
	PlatformVocabulary map[string]int

	// ContentTypeVocabulary maps lowercased content types to codes.
	// Values outside the vocabulary encode to 0.
	ContentTypeVocabulary map[string]int

	// RollingWindow is the maximum trailing window for rolling means.
	RollingWindow int
}

// DefaultConfig returns the standard engineering configuration.
func DefaultConfig() Config {
	return Config{
		TimeColumns:     []string{"post_date", "date", "timestamp", "datetime", "created_at"},
		FollowerColumns: []string{ColFollowersPost, ColFollowers},
		PlatformVocabulary: map[string]int{
			"instagram": 0,
			"facebook":  1,
			"linkedin":  2,
		},
		ContentTypeVocabulary: map[string]int{
			"image":    0,
			"video":    1,
			"carousel": 2,
			"text":     3,
		},
		RollingWindow: 7,
	}
}

// Derivation is one entry of the feature registry. Derive runs only when
// Requires reports true for the current state.
type Derivation struct {
	Name     string
	Requires func(s *state) bool
	Derive   func(s *state)
}

// state is the working context shared by derivations during one Apply call.
type state struct {
	ds  *Dataset
	cfg *Config

	timeCol      string
	times        []time.Time // parsed timeCol, zero = missing
	followersCol string
	sorted       bool
}

// Engineer turns a raw dataset into an augmented dataset by running an
// ordered registry of derivations.
type Engineer struct {
	cfg      Config
	registry []Derivation
}

// NewEngineer creates an Engineer. Zero-valued config fields take defaults.
//
//nolint:gocritic // Config is passed by value so callers cannot mutate tables in use
func NewEngineer(cfg Config) *Engineer {
	def := DefaultConfig()
	if len(cfg.TimeColumns) == 0 {
		cfg.TimeColumns = def.TimeColumns
	}
	if len(cfg.FollowerColumns) == 0 {
		cfg.FollowerColumns = def.FollowerColumns
	}
	if cfg.PlatformVocabulary == nil {
		cfg.PlatformVocabulary = def.PlatformVocabulary
	}
	if cfg.ContentTypeVocabulary == nil {
		cfg.ContentTypeVocabulary = def.ContentTypeVocabulary
	}
	if cfg.RollingWindow < 1 {
		cfg.RollingWindow = def.RollingWindow
	}

	return &Engineer{
		cfg:      cfg,
		registry: defaultRegistry(),
	}
}

// Derivations returns the registry entry names in evaluation order.
func (e *Engineer) Derivations() []string {
	names := make([]string, len(e.registry))
	for i, d := range e.registry {
		names[i] = d.Name
	}
	return names
}

// Apply returns the augmented dataset. raw is not modified.
// Apply never fails: every derivation is guarded by column presence and
// unparsable values degrade to missing or 0.
func (e *Engineer) Apply(raw *Dataset) *Dataset {
	s := &state{
		ds:  raw.Clone(),
		cfg: &e.cfg,
	}
	s.timeCol = firstPresent(s.ds, e.cfg.TimeColumns)
	s.followersCol = firstPresent(s.ds, e.cfg.FollowerColumns)

	for _, d := range e.registry {
		if d.Requires == nil || d.Requires(s) {
			d.Derive(s)
		}
	}
	return s.ds
}

// defaultRegistry lists derivations in the order they must run: temporal
// fields feed the sort, the sort feeds rolling and growth, and sanitization
// runs last.
func defaultRegistry() []Derivation {
	return []Derivation{
		{Name: "temporal", Requires: hasTimeColumn, Derive: deriveTemporal},
		{Name: "post_time_hour", Requires: hasColumn(ColPostTime), Derive: derivePostTimeHour},
		{Name: ColPlatformEncoded, Requires: hasColumn(ColPlatform), Derive: deriveCategory(ColPlatform, ColPlatformEncoded, func(c *Config) map[string]int { return c.PlatformVocabulary })},
		{Name: ColContentEncoded, Requires: hasColumn(ColContentType), Derive: deriveCategory(ColContentType, ColContentEncoded, func(c *Config) map[string]int { return c.ContentTypeVocabulary })},
		{Name: ColCaptionLength, Requires: lacksColumn(ColCaptionLength), Derive: deriveCaptionLength},
		{Name: ColHashtagsCount, Requires: lacksColumn(ColHashtagsCount), Derive: deriveHashtagsCount},
		{Name: ColEngagementRate, Derive: deriveEngagementRate},
		{Name: "time_sort", Requires: sortable, Derive: sortByTime},
		{Name: ColRollingLikes, Derive: deriveRollingLikes},
		{Name: ColRollingEngagement, Derive: deriveRollingEngagement},
		{Name: ColFollowerGrowth, Derive: deriveFollowerGrowth},
		{Name: ColPlatformContent, Requires: hasColumns(ColPlatformEncoded, ColContentEncoded), Derive: deriveInteraction(ColPlatformContent, ColPlatformEncoded, ColContentEncoded)},
		{Name: ColHourPlatform, Requires: hasColumns(ColPostingHour, ColPlatformEncoded), Derive: deriveInteraction(ColHourPlatform, ColPostingHour, ColPlatformEncoded)},
		{Name: "sanitize", Derive: sanitize},
	}
}

func hasTimeColumn(s *state) bool { return s.timeCol != "" }

func sortable(s *state) bool { return s.timeCol != "" && s.ds.Len() > 1 }

func hasColumn(name string) func(*state) bool {
	return func(s *state) bool { return s.ds.Has(name) }
}

func lacksColumn(name string) func(*state) bool {
	return func(s *state) bool { return !s.ds.Has(name) }
}

func hasColumns(names ...string) func(*state) bool {
	return func(s *state) bool {
		for _, n := range names {
			if !s.ds.Has(n) {
				return false
			}
		}
		return true
	}
}

func firstPresent(ds *Dataset, candidates []string) string {
	for _, c := range candidates {
		if ds.Has(c) {
			return c
		}
	}
	return ""
}

func deriveTemporal(s *state) {
	n := s.ds.Len()
	s.times = make([]time.Time, n)
	parsed := make([]any, n)
	hour := make([]any, n)
	day := make([]any, n)
	month := make([]any, n)
	dom := make([]any, n)
	weekend := make([]any, n)

	for i := 0; i < n; i++ {
		t := parseTime(s.ds.Value(s.timeCol, i))
		s.times[i] = t
		weekend[i] = 0.0
		if t.IsZero() {
			continue
		}
		parsed[i] = t
		wd := (int(t.Weekday()) + 6) % 7 // Monday = 0
		hour[i] = float64(t.Hour())
		day[i] = float64(wd)
		month[i] = float64(t.Month())
		dom[i] = float64(t.Day())
		if wd >= 5 {
			weekend[i] = 1.0
		}
	}

	s.ds.set(s.timeCol, parsed)
	s.ds.set(ColPostingHour, hour)
	s.ds.set(ColPostingDay, day)
	s.ds.set(ColMonth, month)
	s.ds.set(ColDayOfMonth, dom)
	s.ds.set(ColIsWeekend, weekend)
}

func derivePostTimeHour(s *state) {
	n := s.ds.Len()
	hour := make([]any, n)
	copy(hour, s.ds.Column(ColPostingHour))

	for i := 0; i < n; i++ {
		text, ok := s.ds.String(ColPostTime, i)
		if !ok {
			continue
		}
		if h, ok := parseLeadingHour(text); ok {
			hour[i] = float64(h)
		}
	}
	s.ds.set(ColPostingHour, hour)
}

func deriveCategory(src, dst string, vocab func(*Config) map[string]int) func(*state) {
	return func(s *state) {
		table := vocab(s.cfg)
		out := make([]any, s.ds.Len())
		for i := range out {
			code := 0
			if text, ok := s.ds.String(src, i); ok {
				code = table[strings.ToLower(strings.TrimSpace(text))]
			}
			out[i] = float64(code)
		}
		s.ds.set(dst, out)
	}
}

func deriveCaptionLength(s *state) {
	out := make([]any, s.ds.Len())
	for i := range out {
		length := 0
		if text, ok := s.ds.String(ColCaption, i); ok {
			length = utf8.RuneCountInString(text)
		}
		out[i] = float64(length)
	}
	s.ds.set(ColCaptionLength, out)
}

func deriveHashtagsCount(s *state) {
	n := s.ds.Len()
	switch {
	case s.ds.Has(ColHashtags):
		out := make([]any, n)
		for i := range out {
			count := 0
			if text, ok := s.ds.String(ColHashtags, i); ok {
				count = strings.Count(text, "#")
			}
			out[i] = float64(count)
		}
		s.ds.set(ColHashtagsCount, out)
	case s.ds.Has(ColHashtagCount):
		out := make([]any, n)
		copy(out, s.ds.Column(ColHashtagCount))
		s.ds.set(ColHashtagsCount, out)
	default:
		s.ds.set(ColHashtagsCount, zeros(n))
	}
}

// deriveEngagementRate computes (likes+comments+shares)/followers. Absent
// component columns contribute 0; a missing cell makes the row's rate 0.
func deriveEngagementRate(s *state) {
	n := s.ds.Len()
	if s.followersCol == "" {
		s.ds.set(ColEngagementRate, zeros(n))
		return
	}

	out := make([]any, n)
	for i := 0; i < n; i++ {
		out[i] = 0.0
		followers, ok := s.ds.Float(s.followersCol, i)
		if !ok || followers <= 0 {
			continue
		}
		total, ok := engagementTotal(s.ds, i)
		if !ok {
			continue
		}
		if rate := total / followers; isFinite(rate) {
			out[i] = rate
		}
	}
	s.ds.set(ColEngagementRate, out)
}

func engagementTotal(ds *Dataset, row int) (float64, bool) {
	var total float64
	for _, col := range []string{ColLikes, ColComments, ColShares} {
		if !ds.Has(col) {
			continue
		}
		v, ok := ds.Float(col, row)
		if !ok {
			return 0, false
		}
		total += v
	}
	return total, true
}

// sortByTime stable-sorts rows ascending by the parsed time column.
// Rows with a missing time sort last.
func sortByTime(s *state) {
	idx := make([]int, s.ds.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ta, tb := s.times[idx[a]], s.times[idx[b]]
		if ta.IsZero() || tb.IsZero() {
			return !ta.IsZero() && tb.IsZero()
		}
		return ta.Before(tb)
	})

	s.ds.reorder(idx)
	times := make([]time.Time, len(idx))
	for i, j := range idx {
		times[i] = s.times[j]
	}
	s.times = times
	s.sorted = true
}

func deriveRollingLikes(s *state) {
	n := s.ds.Len()
	if !s.ds.Has(ColLikes) {
		s.ds.set(ColRollingLikes, zeros(n))
		return
	}

	values, present := floatsWithPresence(s.ds, ColLikes)
	mean, ok := meanOf(values, present)
	if !ok {
		mean = 0
	}
	if !s.sorted {
		s.ds.set(ColRollingLikes, constant(n, mean))
		return
	}
	s.ds.set(ColRollingLikes, rollingMean(values, present, s.window(), mean))
}

func deriveRollingEngagement(s *state) {
	n := s.ds.Len()
	values, present := floatsWithPresence(s.ds, ColEngagementRate)
	mean, ok := meanOf(values, present)
	if !ok {
		mean = 0
	}
	if !s.sorted {
		s.ds.set(ColRollingEngagement, constant(n, mean))
		return
	}
	s.ds.set(ColRollingEngagement, rollingMean(values, present, s.window(), mean))
}

// deriveFollowerGrowth is the first difference of the followers column in
// time order. It is 0 without a followers column or without a time sort.
func deriveFollowerGrowth(s *state) {
	n := s.ds.Len()
	if s.followersCol == "" || !s.sorted {
		s.ds.set(ColFollowerGrowth, zeros(n))
		return
	}

	out := make([]any, n)
	out[0] = 0.0
	for i := 1; i < n; i++ {
		out[i] = 0.0
		prev, okPrev := s.ds.Float(s.followersCol, i-1)
		cur, okCur := s.ds.Float(s.followersCol, i)
		if okPrev && okCur {
			if diff := cur - prev; isFinite(diff) {
				out[i] = diff
			}
		}
	}
	s.ds.set(ColFollowerGrowth, out)
}

func deriveInteraction(dst, major, minor string) func(*state) {
	return func(s *state) {
		out := make([]any, s.ds.Len())
		for i := range out {
			a, okA := s.ds.Float(major, i)
			b, okB := s.ds.Float(minor, i)
			if okA && okB {
				out[i] = a*10 + b
			}
		}
		s.ds.set(dst, out)
	}
}

// sanitizedColumns are coerced to whole numbers after derivation.
var sanitizedColumns = []string{ColLikes, ColComments, ColShares, ColCaptionLength, ColHashtagsCount}

func sanitize(s *state) {
	cols := sanitizedColumns
	if s.followersCol != "" {
		cols = append(append([]string(nil), cols...), s.followersCol)
	}

	for _, name := range cols {
		if !s.ds.Has(name) {
			continue
		}
		out := make([]any, s.ds.Len())
		for i := range out {
			v, ok := s.ds.Float(name, i)
			if !ok || !isFinite(v) {
				v = 0
			}
			out[i] = math.Trunc(v)
		}
		s.ds.set(name, out)
	}

	for _, name := range s.ds.names {
		col := s.ds.cols[name]
		for i, v := range col {
			if f, ok := v.(float64); ok && math.IsInf(f, 0) {
				col[i] = 0.0
			}
		}
	}
}

func (s *state) window() int {
	if n := s.ds.Len(); n < s.cfg.RollingWindow {
		return n
	}
	return s.cfg.RollingWindow
}

// rollingMean is a trailing mean over window rows counting only present
// values (minimum one). Rows whose window holds no value take fallback.
func rollingMean(values []float64, present []bool, window int, fallback float64) []any {
	out := make([]any, len(values))
	var sum float64
	var count int
	for i := range values {
		if present[i] {
			sum += values[i]
			count++
		}
		if j := i - window; j >= 0 && present[j] {
			sum -= values[j]
			count--
		}
		if count > 0 {
			out[i] = sum / float64(count)
		} else {
			out[i] = fallback
		}
	}
	return out
}

func floatsWithPresence(ds *Dataset, name string) ([]float64, []bool) {
	n := ds.Len()
	values := make([]float64, n)
	present := make([]bool, n)
	for i := 0; i < n; i++ {
		if v, ok := ds.Float(name, i); ok && isFinite(v) {
			values[i] = v
			present[i] = true
		}
	}
	return values, present
}

// meanOf is the mean of the present values, weighted 0/1 by presence.
func meanOf(values []float64, present []bool) (float64, bool) {
	weights := make([]float64, len(values))
	var count int
	for i := range values {
		if present[i] {
			weights[i] = 1
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return stat.Mean(values, weights), true
}

func zeros(n int) []any {
	return constant(n, 0)
}

func constant(n int, v float64) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = v
	}
	return out
}
