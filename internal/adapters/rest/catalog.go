package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/toinnnnn/avaliacao-bigdata/internal/core/dashboard"
	"github.com/toinnnnn/avaliacao-bigdata/internal/core/domain"
)

type trackResponse struct {
	ID          string    `json:"track_id"`
	Name        string    `json:"name"`
	Artist      string    `json:"artist"`
	Artists     []string  `json:"artists"`
	Album       string    `json:"album,omitempty"`
	ReleaseDate *string   `json:"release_date"`
	Popularity  int       `json:"popularity"`
	DurationMs  int64     `json:"duration_ms"`
	Region      string    `json:"region"`
	FetchedAt   time.Time `json:"fetched_at"`
}

type videoResponse struct {
	ID           string     `json:"video_id"`
	Title        string     `json:"title"`
	ChannelID    string     `json:"channel_id,omitempty"`
	ChannelTitle string     `json:"channel_title,omitempty"`
	Category     string     `json:"category,omitempty"`
	ViewCount    int64      `json:"view_count"`
	LikeCount    int64      `json:"like_count"`
	CommentCount int64      `json:"comment_count"`
	PublishedAt  *time.Time `json:"published_at"`
	Region       string     `json:"region"`
	FetchedAt    time.Time  `json:"fetched_at"`
}

type correlationResponse struct {
	ID              int64     `json:"id"`
	TrackID         string    `json:"track_id"`
	VideoID         string    `json:"video_id"`
	SimilarityScore int       `json:"similarity_score"`
	Reason          string    `json:"reason"`
	RegionSpotify   string    `json:"region_spotify"`
	RegionYouTube   string    `json:"region_youtube"`
	TrackName       string    `json:"track_name"`
	ArtistName      string    `json:"artist_name"`
	VideoTitle      string    `json:"video_title"`
	RunID           string    `json:"run_id,omitempty"`
	Popularity      int       `json:"popularity"`
	ViewCount       int64     `json:"view_count"`
	FetchedAt       time.Time `json:"fetched_at"`
}

type listResponse[T any] struct {
	Count int `json:"count"`
	Items []T `json:"items"`
}

func toTrackResponse(t domain.Track) trackResponse {
	resp := trackResponse{
		ID:         t.ID,
		Name:       t.Name,
		Artist:     t.Artist,
		Artists:    []string{},
		Album:      t.Album,
		Popularity: t.Popularity,
		DurationMs: t.DurationMs,
		Region:     t.Region,
		FetchedAt:  t.FetchedAt,
	}
	if t.Artists != "" {
		_ = json.Unmarshal([]byte(t.Artists), &resp.Artists)
	}
	if t.ReleaseDate != nil {
		d := t.ReleaseDate.Format(time.DateOnly)
		resp.ReleaseDate = &d
	}
	return resp
}

func toVideoResponse(v domain.Video) videoResponse {
	return videoResponse{
		ID:           v.ID,
		Title:        v.Title,
		ChannelID:    v.ChannelID,
		ChannelTitle: v.ChannelTitle,
		Category:     v.Category,
		ViewCount:    v.ViewCount,
		LikeCount:    v.LikeCount,
		CommentCount: v.CommentCount,
		PublishedAt:  v.PublishedAt,
		Region:       v.Region,
		FetchedAt:    v.FetchedAt,
	}
}

func toCorrelationResponse(m dashboard.Match) correlationResponse {
	return correlationResponse{
		ID:              m.ID,
		TrackID:         m.TrackID,
		VideoID:         m.VideoID,
		SimilarityScore: m.SimilarityScore,
		Reason:          m.Reason,
		RegionSpotify:   m.RegionSpotify,
		RegionYouTube:   m.RegionYouTube,
		TrackName:       m.TrackName,
		ArtistName:      m.ArtistName,
		VideoTitle:      m.VideoTitle,
		RunID:           m.RunID,
		Popularity:      m.Popularity,
		ViewCount:       m.ViewCount,
		FetchedAt:       m.FetchedAt,
	}
}

func mapAll[S, D any](rows []S, f func(S) D) []D {
	out := make([]D, len(rows))
	for i, r := range rows {
		out[i] = f(r)
	}
	return out
}

// ListTracks handles GET /tracks.
func (h *Handler) ListTracks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f, err := trackFilter(q, "region")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	n, err := limit(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tracks, err := h.catalog.Tracks(r.Context(), f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	items := mapAll(truncate(tracks, n), toTrackResponse)
	writeJSON(w, http.StatusOK, listResponse[trackResponse]{Count: len(items), Items: items})
}

// ListVideos handles GET /videos.
func (h *Handler) ListVideos(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f, err := videoFilter(q, "region")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	n, err := limit(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	videos, err := h.catalog.Videos(r.Context(), f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	items := mapAll(truncate(videos, n), toVideoResponse)
	writeJSON(w, http.StatusOK, listResponse[videoResponse]{Count: len(items), Items: items})
}

// ListCorrelations handles GET /correlations. Track and video filters both
// apply; min_score narrows by similarity.
func (h *Handler) ListCorrelations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tf, vf, ok := h.joinedFilters(w, r)
	if !ok {
		return
	}
	n, err := limit(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	minScore, err := bound(q, "min_score")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	matches, err := h.catalog.Correlations(r.Context(), tf, vf)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if minScore != nil {
		kept := matches[:0]
		for _, m := range matches {
			if int64(m.SimilarityScore) >= *minScore {
				kept = append(kept, m)
			}
		}
		matches = kept
	}
	items := mapAll(truncate(matches, n), toCorrelationResponse)
	writeJSON(w, http.StatusOK, listResponse[correlationResponse]{Count: len(items), Items: items})
}

// Summary handles GET /summary.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	tf, vf, ok := h.joinedFilters(w, r)
	if !ok {
		return
	}
	s, err := h.catalog.Summary(r.Context(), tf, vf)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) joinedFilters(w http.ResponseWriter, r *http.Request) (dashboard.TrackFilter, dashboard.VideoFilter, bool) {
	q := r.URL.Query()
	tf, err := trackFilter(q, "track_region")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return tf, dashboard.VideoFilter{}, false
	}
	vf, err := videoFilter(q, "video_region")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return tf, vf, false
	}
	return tf, vf, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("catalog read failed", "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "failed to read catalog")
}
