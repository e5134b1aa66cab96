package match

import (
	"sync"
	"testing"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{
			name: "title with decoration",
			a:    "Blinding Lights The Weeknd",
			b:    "The Weeknd - Blinding Lights (Official Video)",
			want: 100,
		},
		{
			name: "case and accents",
			a:    "Beyoncé Halo",
			b:    "BEYONCE - HALO",
			want: 100,
		},
		{
			name: "repeated tokens",
			a:    "love love love",
			b:    "Love",
			want: 100,
		},
		{
			name: "no shared tokens",
			a:    "abc",
			b:    "abd",
			want: 67,
		},
		{
			name: "partial overlap",
			a:    "red blue",
			b:    "red green",
			want: 59,
		},
		{
			name: "empty left",
			a:    "",
			b:    "anything",
			want: 0,
		},
		{
			name: "punctuation only",
			a:    "!!! ---",
			b:    "abc",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.a, tt.b)
			if got != tt.want {
				t.Fatalf("Score(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestScore_Unrelated(t *testing.T) {
	got := Score("Xyzzy Obscure Track Nobody", "Completely Unrelated Vlog Episode 12")
	if got >= DefaultThreshold {
		t.Fatalf("unrelated strings scored %d, want below %d", got, DefaultThreshold)
	}
}

func TestScore_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"Flowers Miley Cyrus", "Miley Cyrus - Flowers (Official Video)"},
		{"red blue", "red green"},
		{"Despacito Luis Fonsi", "Luis Fonsi - Despacito ft. Daddy Yankee"},
		{"abc", "xyz"},
	}
	for _, p := range pairs {
		if ab, ba := Score(p[0], p[1]), Score(p[1], p[0]); ab != ba {
			t.Fatalf("Score not symmetric for %q/%q: %d vs %d", p[0], p[1], ab, ba)
		}
	}
}

func TestScore_ConcurrentCallsAgree(t *testing.T) {
	const a, b = "Beyoncé Crazy In Love", "Beyonce - Crazy In Love ft. JAY Z"
	want := Score(a, b)

	var wg sync.WaitGroup
	results := make([]int, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Score(a, b)
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		if got != want {
			t.Fatalf("call %d: got %d, want %d", i, got, want)
		}
	}
}

func TestScorer_Stem(t *testing.T) {
	plain := Scorer{}.Score("dancing queen abba", "ABBA - Dance Queens")
	stemmed := Scorer{Stem: true}.Score("dancing queen abba", "ABBA - Dance Queens")
	if stemmed != MaxScore {
		t.Fatalf("stemmed score: got %d, want %d", stemmed, MaxScore)
	}
	if plain >= stemmed {
		t.Fatalf("expected stemming to raise the score, plain=%d stemmed=%d", plain, stemmed)
	}
}

func TestIndelDistance(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{name: "kitten sitting", a: "kitten", b: "sitting", want: 5},
		{name: "empty to word", a: "", b: "sound", want: 5},
		{name: "identical", a: "weeknd", b: "weeknd", want: 0},
		{name: "multibyte", a: "café", b: "cafe", want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := indelDistance(tt.a, tt.b); got != tt.want {
				t.Fatalf("distance: got %d, want %d", got, tt.want)
			}
		})
	}
}
