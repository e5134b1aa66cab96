package dashboard

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/toinnnnn/avaliacao-bigdata/internal/core/domain"
)

// TopCategoryLimit caps Summary.TopCategories.
const TopCategoryLimit = 10

// RegionValue is one bar of a per-region chart.
type RegionValue struct {
	Region string  `json:"region"`
	Value  float64 `json:"value"`
}

// CategoryViews is total views for one category.
type CategoryViews struct {
	Category string `json:"category"`
	Views    int64  `json:"views"`
}

// Match joins a correlation with the track and video fields the dashboard
// plots against each other.
type Match struct {
	domain.Correlation
	Popularity int
	ViewCount  int64
}

// Summary aggregates filtered catalogs. Means and correlations are NaN-free:
// they are zero when there is nothing to aggregate.
type Summary struct {
	Tracks         int   `json:"tracks"`
	Videos         int   `json:"videos"`
	Matches        int   `json:"matches"`
	UniqueChannels int   `json:"unique_channels"`
	TotalViews     int64 `json:"total_views"`
	TotalComments  int64 `json:"total_comments"`

	MeanPopularity   float64 `json:"mean_popularity"`
	StdDevPopularity float64 `json:"stddev_popularity"`
	MedianScore      float64 `json:"median_score"`
	// PopularityViews is the Pearson correlation between track popularity
	// and the matched video's views.
	PopularityViews float64 `json:"popularity_views"`

	PopularityByRegion []RegionValue   `json:"popularity_by_region"`
	ViewsByRegion      []RegionValue   `json:"views_by_region"`
	TopCategories      []CategoryViews `json:"top_categories"`
}

// Summarize computes a Summary. Regions come out sorted; categories by
// descending views, then name.
func Summarize(tracks []domain.Track, videos []domain.Video, matches []Match) Summary {
	s := Summary{
		Tracks:             len(tracks),
		Videos:             len(videos),
		Matches:            len(matches),
		PopularityByRegion: []RegionValue{},
		ViewsByRegion:      []RegionValue{},
		TopCategories:      []CategoryViews{},
	}

	popularity := make([]float64, len(tracks))
	byRegion := map[string][]float64{}
	for i, t := range tracks {
		popularity[i] = float64(t.Popularity)
		byRegion[t.Region] = append(byRegion[t.Region], float64(t.Popularity))
	}
	if len(popularity) > 0 {
		s.MeanPopularity, s.StdDevPopularity = stat.MeanStdDev(popularity, nil)
		s.StdDevPopularity = finite(s.StdDevPopularity)
	}
	for _, region := range sortedKeys(byRegion) {
		s.PopularityByRegion = append(s.PopularityByRegion, RegionValue{Region: region, Value: stat.Mean(byRegion[region], nil)})
	}

	channels := map[string]struct{}{}
	views := map[string]int64{}
	categories := map[string]int64{}
	for _, v := range videos {
		s.TotalViews += v.ViewCount
		s.TotalComments += v.CommentCount
		if v.ChannelID != "" {
			channels[v.ChannelID] = struct{}{}
		}
		views[v.Region] += v.ViewCount
		if v.Category != "" {
			categories[v.Category] += v.ViewCount
		}
	}
	s.UniqueChannels = len(channels)
	for _, region := range sortedKeys(views) {
		s.ViewsByRegion = append(s.ViewsByRegion, RegionValue{Region: region, Value: float64(views[region])})
	}
	for category, total := range categories {
		s.TopCategories = append(s.TopCategories, CategoryViews{Category: category, Views: total})
	}
	sort.Slice(s.TopCategories, func(i, j int) bool {
		a, b := s.TopCategories[i], s.TopCategories[j]
		if a.Views != b.Views {
			return a.Views > b.Views
		}
		return a.Category < b.Category
	})
	if len(s.TopCategories) > TopCategoryLimit {
		s.TopCategories = s.TopCategories[:TopCategoryLimit]
	}

	if len(matches) > 0 {
		scores := make([]float64, len(matches))
		pop := make([]float64, len(matches))
		viewCounts := make([]float64, len(matches))
		for i, m := range matches {
			scores[i] = float64(m.SimilarityScore)
			pop[i] = float64(m.Popularity)
			viewCounts[i] = float64(m.ViewCount)
		}
		sort.Float64s(scores)
		s.MedianScore = stat.Quantile(0.5, stat.Empirical, scores, nil)
		if len(matches) > 1 {
			s.PopularityViews = finite(stat.Correlation(pop, viewCounts, nil))
		}
	}
	return s
}

// JoinMatches attaches popularity and views to correlations whose track and
// video are both present, keeping correlation order.
func JoinMatches(correlations []domain.Correlation, tracks []domain.Track, videos []domain.Video) []Match {
	popularity := make(map[string]int, len(tracks))
	for _, t := range tracks {
		popularity[t.ID] = t.Popularity
	}
	views := make(map[string]int64, len(videos))
	for _, v := range videos {
		views[v.ID] = v.ViewCount
	}

	out := make([]Match, 0, len(correlations))
	for _, c := range correlations {
		p, okTrack := popularity[c.TrackID]
		v, okVideo := views[c.VideoID]
		if !okTrack || !okVideo {
			continue
		}
		out = append(out, Match{Correlation: c, Popularity: p, ViewCount: v})
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
