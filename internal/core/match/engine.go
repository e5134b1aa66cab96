package match

import (
	"context"
	"fmt"

	"github.com/toinnnnn/avaliacao-bigdata/internal/core/domain"
	"github.com/toinnnnn/avaliacao-bigdata/internal/worker"
)

// DefaultThreshold is the minimum score a best match needs to be accepted.
const DefaultThreshold = 85

// ScoreFunc scores a track identity against a video title.
type ScoreFunc func(identity string, title string) int

// Engine pairs every track with its best-scoring video.
//
// The search is O(len(tracks) * len(videos)) score evaluations with no
// blocking or candidate pre-filtering; it is sized for the low hundreds of
// records a chart extraction yields.
type Engine struct {
	Threshold int
	Score     ScoreFunc
	// Workers > 1 spreads tracks across goroutines. Output is identical to
	// the sequential search.
	Workers int
}

// NewEngine returns an engine using the default Scorer.
func NewEngine(threshold int) *Engine {
	return &Engine{Threshold: threshold, Score: Score, Workers: 1}
}

type candidate struct {
	video int
	score int
}

// Correlate returns at most one correlation per distinct track ID, in track
// order. A track's best video is the highest scorer, the earliest video on
// equal scores; it is kept only when its score reaches the threshold.
// Neither input is modified.
func (e *Engine) Correlate(tracks []domain.Track, videos []domain.Video) []domain.Correlation {
	out, _ := e.CorrelateContext(context.Background(), tracks, videos)
	return out
}

// CorrelateContext is Correlate with cancellation between tracks.
func (e *Engine) CorrelateContext(ctx context.Context, tracks []domain.Track, videos []domain.Video) ([]domain.Correlation, error) {
	if len(tracks) == 0 || len(videos) == 0 {
		return []domain.Correlation{}, nil
	}

	score := e.Score
	if score == nil {
		score = Score
	}

	best := make([]candidate, len(tracks))
	search := func(job worker.Job) {
		best[job.Index] = bestVideo(tracks[job.Index].Identity(), videos, score)
	}

	if e.Workers > 1 {
		if err := worker.Each(ctx, len(tracks), e.Workers, search); err != nil {
			return nil, fmt.Errorf("match: %w", err)
		}
	} else {
		for i := range tracks {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("match: %w", err)
			}
			search(worker.Job{Index: i})
		}
	}

	rows := make([]domain.Correlation, 0, len(tracks))
	seen := make(map[string]struct{}, len(tracks))
	for i, track := range tracks {
		if _, dup := seen[track.ID]; dup {
			continue
		}
		seen[track.ID] = struct{}{}

		c := best[i]
		if c.video < 0 || c.score < e.Threshold {
			continue
		}
		rows = append(rows, newCorrelation(track, videos[c.video], c.score))
	}
	return rows, nil
}

// bestVideo scans videos in order. A score of zero never becomes a
// candidate, so blank names and titles cannot match.
func bestVideo(identity string, videos []domain.Video, score ScoreFunc) candidate {
	best := candidate{video: -1}
	if identity == "" {
		return best
	}
	for j, v := range videos {
		if v.Title == "" {
			continue
		}
		s := clamp(score(identity, v.Title))
		if s > best.score {
			best = candidate{video: j, score: s}
		}
	}
	return best
}

func clamp(s int) int {
	if s < MinScore {
		return MinScore
	}
	if s > MaxScore {
		return MaxScore
	}
	return s
}

func newCorrelation(t domain.Track, v domain.Video, score int) domain.Correlation {
	return domain.Correlation{
		TrackID:         t.ID,
		VideoID:         v.ID,
		SimilarityScore: score,
		Reason:          fmt.Sprintf("token_set:%d", score),
		RegionSpotify:   t.Region,
		RegionYouTube:   v.Region,
		TrackName:       t.Name,
		ArtistName:      t.Artist,
		VideoTitle:      v.Title,
		FetchedAt:       t.FetchedAt,
	}
}
