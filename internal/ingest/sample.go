// PostPredict - Social Media Post Performance Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpredict

package ingest

import (
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// SampleRows is the row count of the downloadable sample.
const SampleRows = 50

var (
	samplePlatforms    = []string{"Instagram", "Facebook", "LinkedIn"}
	sampleContentTypes = []string{"Image", "Video", "Text"}
	sampleStart        = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
)

// WriteSampleCSV writes a deterministic example upload with one post per day
// from 2024-01-01.
func WriteSampleCSV(w io.Writer, rows int, seed int64) error {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // sample data only

	dates := make([]string, rows)
	platforms := make([]string, rows)
	contentTypes := make([]string, rows)
	captions := make([]string, rows)
	hashtags := make([]string, rows)
	likes := make([]int, rows)
	comments := make([]int, rows)
	shares := make([]int, rows)
	followers := make([]int, rows)
	captionLength := make([]int, rows)
	hashtagCount := make([]int, rows)

	for i := 0; i < rows; i++ {
		dates[i] = sampleStart.AddDate(0, 0, i).Format("2006-01-02")
		platforms[i] = samplePlatforms[rng.Intn(len(samplePlatforms))]
		contentTypes[i] = sampleContentTypes[rng.Intn(len(sampleContentTypes))]
		captions[i] = fmt.Sprintf("Sample caption %d", i)
		hashtags[i] = fmt.Sprintf("#tag%d #social #media", i)
		likes[i] = 50 + rng.Intn(950)
		comments[i] = 5 + rng.Intn(95)
		shares[i] = rng.Intn(50)
		followers[i] = 1000 + rng.Intn(9000)
		captionLength[i] = len(captions[i])
		hashtagCount[i] = strings.Count(hashtags[i], "#")
	}

	df := dataframe.New(
		series.New(dates, series.String, "date"),
		series.New(platforms, series.String, "platform"),
		series.New(contentTypes, series.String, "content_type"),
		series.New(captions, series.String, "caption"),
		series.New(hashtags, series.String, "hashtags"),
		series.New(likes, series.Int, "likes"),
		series.New(comments, series.Int, "comments"),
		series.New(shares, series.Int, "shares"),
		series.New(followers, series.Int, "followers"),
		series.New(captionLength, series.Int, "caption_length"),
		series.New(hashtagCount, series.Int, "hashtag_count"),
	)
	if df.Err != nil {
		return fmt.Errorf("build sample: %w", df.Err)
	}
	if err := df.WriteCSV(w); err != nil {
		return fmt.Errorf("write sample: %w", err)
	}
	return nil
}
