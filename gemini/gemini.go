package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"github.com/semekork/spotify-playlist-Generator/config"
)

// Spotify caps playlist descriptions at 300 characters.
const maxDescriptionLen = 300

// Client writes playlist descriptions with Gemini. When disabled or on any
// failure it returns the empty string and the caller falls back to the
// static description format.
type Client struct {
	enabled bool
	apiKey  string
}

func NewClient(cfg config.GeminiConfig) *Client {
	return &Client{enabled: cfg.Enabled, apiKey: cfg.APIKey}
}

// PlaylistDescription generates a one-liner for the playlist. The final
// track count is always appended so the description embeds it regardless
// of what the model returns.
func (c *Client) PlaylistDescription(ctx context.Context, name string, trackCount int) string {
	if !c.enabled {
		return ""
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		log.Warnf("failed to create Gemini client: %v", err)
		return ""
	}
	defer client.Close()

	model := client.GenerativeModel("gemini-2.0-flash")
	prompt := genai.Text(fmt.Sprintf(
		"Write a single short, punchy description (max 20 words, no quotes, no emoji spam) "+
			"for a music playlist called %q. Plain text only.", name))

	resp, err := model.GenerateContent(ctx, prompt)
	if err != nil {
		log.Warnf("Gemini description generation failed: %v", err)
		return ""
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				sb.WriteString(fmt.Sprint(part))
			}
		}
	}

	description := strings.TrimSpace(sb.String())
	if description == "" {
		return ""
	}

	suffix := fmt.Sprintf(" | %d Tracks", trackCount)
	if len(description)+len(suffix) > maxDescriptionLen {
		description = description[:maxDescriptionLen-len(suffix)]
	}
	return description + suffix
}
