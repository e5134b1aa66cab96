package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"github.com/toinnnnn/avaliacao-bigdata/internal/core/dashboard"
)

type cliTestEnv struct {
	configPath string
	dataDir    string
	tracksCSV  string
	videosCSV  string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	for _, key := range []string{"SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_SECRET", "YOUTUBE_API_KEY", "CROSSFADE_POSTGRES_DSN", "DB_HOST", "DB_NAME"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	env := &cliTestEnv{
		configPath: filepath.Join(base, "crossfade.toml"),
		dataDir:    filepath.Join(base, "data"),
		tracksCSV:  filepath.Join(base, "tracks.csv"),
		videosCSV:  filepath.Join(base, "videos.csv"),
	}

	writeFile(t, env.configPath, "[paths]\ndata_dir = \""+filepath.ToSlash(env.dataDir)+"\"\n\n[logging]\nlevel = \"warn\"\n")
	writeFile(t, env.tracksCSV, strings.Join([]string{
		"track_id,name,artists,album,release_date,popularity,duration_ms,region",
		`t1,Blinding Lights,"[""The Weeknd""]",After Hours,2019-11-29,92,200040,BR`,
		"t2,Xyzzy Obscure Track,Nobody,,someday,10,1000,US",
		",missing id,Nobody,,,,,",
	}, "\n")+"\n")
	writeFile(t, env.videosCSV, strings.Join([]string{
		"video_id,title,channel_title,category_id,view_count,like_count,comment_count,published_at,region",
		"v1,Completely Unrelated Vlog Episode 12,Vlogger,22,10,1,0,2025-04-30T10:00:00Z,US",
		"v2,The Weeknd - Blinding Lights (Official Video),TheWeekndVEVO,10,5000,100,7,2020-01-21T17:00:00Z,BR",
	}, "\n")+"\n")
	return env
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestRunFromCSVAndListCorrelations(t *testing.T) {
	env := setupCLITestEnv(t)
	runArgs := []string{"run", "--tracks-csv", env.tracksCSV, "--videos-csv", env.videosCSV}

	for i := 0; i < 2; i++ {
		out, stderr, err := runCLI(t, runArgs, env.configPath)
		if err != nil {
			t.Fatalf("run %d: %v\n%s", i, err, stderr)
		}
		requireContains(t, out, "Correlated: 1")
		requireContains(t, out, "spotify_tracks")
	}

	out, _, err := runCLI(t, []string{"correlations", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("correlations: %v", err)
	}
	var matches []dashboard.Match
	if err := json.Unmarshal([]byte(out), &matches); err != nil {
		t.Fatalf("decode correlations: %v\n%s", err, out)
	}
	if len(matches) != 1 {
		t.Fatalf("replace runs must leave one correlation, got %d", len(matches))
	}
	if matches[0].TrackID != "t1" || matches[0].VideoID != "v2" || matches[0].ViewCount != 5000 {
		t.Fatalf("unexpected correlation: %+v", matches[0])
	}

	out, _, err = runCLI(t, []string{"correlations", "--region", "us"}, env.configPath)
	if err != nil {
		t.Fatalf("correlations by region: %v", err)
	}
	requireContains(t, out, "No correlations found")

	out, _, err = runCLI(t, []string{"correlations"}, env.configPath)
	if err != nil {
		t.Fatalf("correlations table: %v", err)
	}
	requireContains(t, out, "Blinding Lights")
}

func TestRunRequiresConfiguredSources(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"run", "--videos-csv", env.videosCSV}, env.configPath)
	if err == nil {
		t.Fatal("expected error without spotify credentials")
	}
	requireContains(t, err.Error(), "spotify is not configured")

	_, _, err = runCLI(t, []string{"run", "--tracks-csv", env.tracksCSV}, env.configPath)
	if err == nil {
		t.Fatal("expected error without youtube credentials")
	}
	requireContains(t, err.Error(), "youtube is not configured")
}

func TestRunRefusesConcurrentRuns(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.MkdirAll(env.dataDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	held := flock.New(filepath.Join(env.dataDir, "crossfade.lock"))
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("pre-lock: ok=%v err=%v", ok, err)
	}
	defer held.Unlock()

	_, _, err = runCLI(t, []string{"run", "--tracks-csv", env.tracksCSV, "--videos-csv", env.videosCSV}, env.configPath)
	if err == nil {
		t.Fatal("expected lock error")
	}
	requireContains(t, err.Error(), "another crossfade run")
}

func TestRunReportsMissingCSV(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"run", "--tracks-csv", filepath.Join(env.dataDir, "nope.csv"), "--videos-csv", env.videosCSV}, env.configPath)
	if err == nil {
		t.Fatal("expected extraction error")
	}
	requireContains(t, err.Error(), "extract tracks")
	requireContains(t, out, "Correlated: 0")
}

func TestScoreCommand(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{args: []string{"score", "Blinding Lights The Weeknd", "The Weeknd - Blinding Lights (Official Video)"}, want: "100\tmatch"},
		{args: []string{"score", "Xyzzy Obscure Track Nobody", "Completely Unrelated Vlog Episode 12"}, want: "no match"},
		{args: []string{"score", "--threshold", "50", "abc", "abd"}, want: "67\tmatch"},
	}

	for _, tc := range tests {
		out, _, err := runCLI(t, tc.args, "")
		if err != nil {
			t.Fatalf("score %v: %v", tc.args, err)
		}
		requireContains(t, out, tc.want)
	}

	if _, _, err := runCLI(t, []string{"score", "only one"}, ""); err == nil {
		t.Fatal("expected argument error")
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "spotify_tracks (replace)")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected refusal to overwrite")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}
