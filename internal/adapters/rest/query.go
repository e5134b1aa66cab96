package rest

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/toinnnnn/avaliacao-bigdata/internal/core/dashboard"
)

// list collects a repeatable, comma-separated parameter.
func list(q url.Values, key string, fold func(string) string) []string {
	var out []string
	for _, raw := range q[key] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if fold != nil {
				part = fold(part)
			}
			out = append(out, part)
		}
	}
	return out
}

func bound(q url.Values, key string) (*int64, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer, got %q", key, raw)
	}
	return &v, nil
}

func rangeParam(q url.Values, minKey, maxKey string) (dashboard.Range, error) {
	lo, err := bound(q, minKey)
	if err != nil {
		return dashboard.Range{}, err
	}
	hi, err := bound(q, maxKey)
	if err != nil {
		return dashboard.Range{}, err
	}
	if lo != nil && hi != nil && *lo > *hi {
		return dashboard.Range{}, fmt.Errorf("%s must not exceed %s", minKey, maxKey)
	}
	return dashboard.Range{Min: lo, Max: hi}, nil
}

// trackFilter reads track filters; regionKey differs between the single
// catalog routes and the joined ones.
func trackFilter(q url.Values, regionKey string) (dashboard.TrackFilter, error) {
	years, err := rangeParam(q, "year_from", "year_to")
	if err != nil {
		return dashboard.TrackFilter{}, err
	}
	popularity, err := rangeParam(q, "popularity_min", "popularity_max")
	if err != nil {
		return dashboard.TrackFilter{}, err
	}
	return dashboard.TrackFilter{
		Regions:    list(q, regionKey, strings.ToUpper),
		Artists:    list(q, "artist", nil),
		Years:      years,
		Popularity: popularity,
	}, nil
}

func videoFilter(q url.Values, regionKey string) (dashboard.VideoFilter, error) {
	views, err := rangeParam(q, "views_min", "views_max")
	if err != nil {
		return dashboard.VideoFilter{}, err
	}
	return dashboard.VideoFilter{
		Regions:    list(q, regionKey, strings.ToUpper),
		Categories: list(q, "category", nil),
		Channels:   list(q, "channel", nil),
		Views:      views,
	}, nil
}

// limit reads an optional positive page size.
func limit(q url.Values) (int, error) {
	raw := strings.TrimSpace(q.Get("limit"))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("limit must be a positive integer, got %q", raw)
	}
	return n, nil
}

func truncate[T any](rows []T, n int) []T {
	if n > 0 && len(rows) > n {
		return rows[:n]
	}
	return rows
}
