// PostPredict - Social Media Post Performance Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpredict

package features

import "errors"

// ErrEmptyFeatureSet is returned when a dataset has none of the candidate
// feature columns.
var ErrEmptyFeatureSet = errors.New("no valid features found in data")

// candidateGroups lists model inputs in order. Within a group the first
// present alias wins, so engineered names shadow raw ones.
var candidateGroups = [][]string{
	{ColPostingHour, ColHour},
	{ColPostingDay, ColDayOfWeek},
	{ColMonth},
	{ColPlatformEncoded},
	{ColContentEncoded},
	{ColCaptionLength},
	{ColHashtagsCount, ColHashtagCount},
	{ColEngagementRate},
	{ColRollingLikes},
	{ColFollowersPost, ColFollowers},
}

// Select returns the ordered feature names present in ds.
func Select(ds *Dataset) ([]string, error) {
	var names []string
	for _, group := range candidateGroups {
		if name := firstPresent(ds, group); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, ErrEmptyFeatureSet
	}
	return names, nil
}
