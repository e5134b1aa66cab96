package spotify

import (
	"github.com/toinnnnn/avaliacao-bigdata/internal/core/domain"
)

// trackToRecord flattens a playlist track into the raw shape the normalizer
// reads. Artists stay a list so the normalizer can pick the primary one.
func trackToRecord(st spotifyTrack, region string) domain.RawRecord {
	artists := make([]string, 0, len(st.Artists))
	for _, a := range st.Artists {
		artists = append(artists, a.Name)
	}

	return domain.RawRecord{
		"track_id":     st.ID,
		"name":         st.Name,
		"artists":      artists,
		"album":        st.Album.Name,
		"release_date": st.Album.ReleaseDate,
		"popularity":   st.Popularity,
		"duration_ms":  st.DurationMs,
		"region":       region,
	}
}
