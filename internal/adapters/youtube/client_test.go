package youtube

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/toinnnnn/avaliacao-bigdata/internal/adapters/httpx"
	"github.com/toinnnnn/avaliacao-bigdata/internal/core/domain"
	"github.com/toinnnnn/avaliacao-bigdata/internal/core/normalize"
)

func TestClient_Fetch(t *testing.T) {
	var mu sync.Mutex
	var queries []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/videos" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		mu.Lock()
		queries = append(queries, q.Get("regionCode")+":"+q.Get("pageToken")+":"+q.Get("maxResults"))
		mu.Unlock()
		if q.Get("key") != "k" || q.Get("chart") != "mostPopular" || q.Get("part") != "snippet,statistics" {
			http.Error(w, "bad query", http.StatusBadRequest)
			return
		}

		resp := videoListResponse{}
		switch q.Get("regionCode") + q.Get("pageToken") {
		case "BR":
			resp.NextPageToken = "p2"
			resp.Items = []videoItem{{
				ID: "v1",
				Snippet: videoSnippet{
					Title: "The Weeknd - Blinding Lights", ChannelID: "UC1", ChannelTitle: "VEVO",
					CategoryID: "10", PublishedAt: "2020-01-21T15:00:10Z",
				},
				Statistics: videoStatistics{ViewCount: "1000", LikeCount: "10"},
			}}
		case "BRp2":
			resp.Items = []videoItem{{ID: "v2", Snippet: videoSnippet{Title: "Vlog", CategoryID: "22"}}}
		case "US":
			n, _ := strconv.Atoi(q.Get("maxResults"))
			for i := 0; i < n+1; i++ {
				resp.Items = append(resp.Items, videoItem{ID: "us" + strconv.Itoa(i)})
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer ts.Close()

	client := NewClient(Config{
		APIKey:     "k",
		BaseURL:    ts.URL,
		Regions:    []string{"BR", "US"},
		MaxResults: 3,
		HTTP:       httpx.Options{BaseBackoff: time.Millisecond},
	})

	records, err := client.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// BR: two pages of one item; US: page trimmed to the limit.
	if len(records) != 5 {
		t.Fatalf("records: got %d, want 5", len(records))
	}
	wantQueries := []string{"BR::3", "BR:p2:2", "US::3"}
	mu.Lock()
	defer mu.Unlock()
	if len(queries) != len(wantQueries) {
		t.Fatalf("queries: got %v, want %v", queries, wantQueries)
	}
	for i := range wantQueries {
		if queries[i] != wantQueries[i] {
			t.Fatalf("query %d: got %q, want %q", i, queries[i], wantQueries[i])
		}
	}

	res := normalize.Videos(records)
	if len(res.Videos) != 5 {
		t.Fatalf("normalized: got %d, want 5", len(res.Videos))
	}
	first := res.Videos[0]
	if first.Category != "Music" || first.ViewCount != 1000 || first.Region != "BR" {
		t.Fatalf("first video: %+v", first)
	}
	if first.CommentCount != 0 {
		t.Fatalf("hidden comment count should default to 0, got %d", first.CommentCount)
	}
	if res.Videos[1].Category != "People & Blogs" {
		t.Fatalf("second category: got %q", res.Videos[1].Category)
	}
	if res.Videos[4].Region != "US" {
		t.Fatalf("region: got %q", res.Videos[4].Region)
	}
	if res.Videos[0].Region == domain.UnknownRegion {
		t.Fatalf("region lost")
	}
}

func TestClient_FetchPropagatesErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"API key not valid"}}`, http.StatusForbidden)
	}))
	defer ts.Close()

	client := NewClient(Config{BaseURL: ts.URL, Regions: []string{"BR"}})
	if _, err := client.Fetch(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestClient_FetchKeepsHealthyRegions(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("regionCode") == "BR" {
			http.Error(w, "region unavailable", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(videoListResponse{Items: []videoItem{{ID: "us1"}, {ID: "us2"}}})
	}))
	defer ts.Close()

	client := NewClient(Config{
		BaseURL: ts.URL,
		Regions: []string{"BR", "US"},
		HTTP:    httpx.Options{BaseBackoff: time.Millisecond},
	})

	records, err := client.Fetch(context.Background())
	if err == nil || !strings.Contains(err.Error(), "region BR") {
		t.Fatalf("expected region BR failure, got %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records: got %d, want 2", len(records))
	}
	for _, rec := range records {
		if rec["region"] != "US" {
			t.Fatalf("unexpected region in %v", rec)
		}
	}
}
