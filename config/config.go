package config

import (
	"os"
	"strconv"
)

type Config struct {
	Spotify  SpotifyConfig
	Youtube  YoutubeConfig
	Gemini   GeminiConfig
	Options  Options
	Database DatabaseConfig
}

type SpotifyConfig struct {
	ClientID       string
	ClientSecret   string
	RedirectURI    string
	TokenCachePath string
	MatchThreshold float64
	SearchRate     float64 // search calls per second
}

type YoutubeConfig struct {
	APIKey string
}

type GeminiConfig struct {
	Enabled bool
	APIKey  string
}

type Options struct {
	Port            string
	LogLevel        string
	MissingSongFile string
}

type DatabaseConfig struct {
	Path string
}

// Load builds a Config from the environment. Callers receive an explicit
// object and pass it down; nothing below main reads the environment.
func Load() *Config {
	return &Config{
		Spotify: SpotifyConfig{
			ClientID:       os.Getenv("SPOTIFY_CLIENT_ID"),
			ClientSecret:   os.Getenv("SPOTIFY_CLIENT_SECRET"),
			RedirectURI:    getRedirectURI(),
			TokenCachePath: getTokenCachePath(),
			MatchThreshold: getMatchThreshold(),
			SearchRate:     getSearchRate(),
		},
		Youtube: YoutubeConfig{
			APIKey: os.Getenv("YOUTUBE_API_KEY"),
		},
		Gemini: GeminiConfig{
			Enabled: os.Getenv("GEMINI_ENABLED") == "true",
			APIKey:  os.Getenv("GEMINI_API_KEY"),
		},
		Options: Options{
			Port:            os.Getenv("PORT"),
			LogLevel:        os.Getenv("LOG_LEVEL"),
			MissingSongFile: getMissingSongFile(),
		},
		Database: DatabaseConfig{
			Path: os.Getenv("DB_PATH"),
		},
	}
}

func getRedirectURI() string {
	uri := os.Getenv("SPOTIFY_REDIRECT_URI")
	if uri == "" {
		return "http://localhost:8888/callback"
	}
	return uri
}

func getTokenCachePath() string {
	path := os.Getenv("SPOTIFY_TOKEN_CACHE")
	if path == "" {
		return ".spotify_cache"
	}
	return path
}

func getMatchThreshold() float64 {
	thresholdStr := os.Getenv("MATCH_THRESHOLD")
	if thresholdStr == "" {
		return 0.4
	}
	threshold, err := strconv.ParseFloat(thresholdStr, 64)
	if err != nil || threshold <= 0 || threshold > 1 {
		return 0.4
	}
	return threshold
}

func getSearchRate() float64 {
	rateStr := os.Getenv("SPOTIFY_SEARCH_RATE")
	if rateStr == "" {
		return 5
	}
	rate, err := strconv.ParseFloat(rateStr, 64)
	if err != nil || rate <= 0 {
		return 5
	}
	if rate > 20 {
		return 20 // stay well under the Web API limit
	}
	return rate
}

func getMissingSongFile() string {
	path := os.Getenv("MISSING_SONGS_FILE")
	if path == "" {
		return "missing_songs.txt"
	}
	return path
}
