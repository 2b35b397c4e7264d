package config

import "testing"

func TestGetMatchThreshold(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want float64
	}{
		{"empty", "", 0.4},
		{"invalid", "abc", 0.4},
		{"zero", "0", 0.4},
		{"negative", "-0.2", 0.4},
		{"over_one", "1.5", 0.4},
		{"boundary", "1", 1},
		{"valid", "0.6", 0.6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("MATCH_THRESHOLD", tt.env)
			if got := getMatchThreshold(); got != tt.want {
				t.Errorf("getMatchThreshold() = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestGetSearchRate(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want float64
	}{
		{"empty", "", 5},
		{"invalid", "foo", 5},
		{"zero", "0", 5},
		{"negative", "-1", 5},
		{"valid", "10", 10},
		{"capped", "100", 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SPOTIFY_SEARCH_RATE", tt.env)
			if got := getSearchRate(); got != tt.want {
				t.Errorf("getSearchRate() = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestLoadWithoutEnvironment(t *testing.T) {
	t.Setenv("SPOTIFY_CLIENT_ID", "")
	t.Setenv("SPOTIFY_REDIRECT_URI", "")
	t.Setenv("SPOTIFY_TOKEN_CACHE", "")
	t.Setenv("MISSING_SONGS_FILE", "")

	cfg := Load()
	if cfg.Spotify.RedirectURI != "http://localhost:8888/callback" {
		t.Errorf("RedirectURI = %q", cfg.Spotify.RedirectURI)
	}
	if cfg.Spotify.TokenCachePath != ".spotify_cache" {
		t.Errorf("TokenCachePath = %q", cfg.Spotify.TokenCachePath)
	}
	if cfg.Options.MissingSongFile != "missing_songs.txt" {
		t.Errorf("MissingSongFile = %q", cfg.Options.MissingSongFile)
	}
}
