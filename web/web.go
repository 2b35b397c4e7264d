// Package web is the web-form shell: it collects input fields, runs the
// pipeline synchronously and renders the accumulated log.
package web

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/semekork/spotify-playlist-Generator/controller"
	"github.com/semekork/spotify-playlist-Generator/database"
	"github.com/semekork/spotify-playlist-Generator/pages"
	"github.com/semekork/spotify-playlist-Generator/pipeline"
	"github.com/semekork/spotify-playlist-Generator/sentry"
)

// Runner is the slice of the controller the handlers need.
type Runner interface {
	CreatePlaylist(ctx context.Context, source controller.Source, name string, sink pipeline.Sink) (*pipeline.BuildReport, error)
	Dedupe(ctx context.Context, playlistRef string, sink pipeline.Sink) (*pipeline.DedupeReport, error)
	RecentRuns(limit int) []database.RunRecord
	AuthError() error
}

// logBuffer collects the pipeline's progress lines for one request.
type logBuffer struct {
	lines []string
}

func (b *logBuffer) Append(line string) {
	b.lines = append(b.lines, line)
}

// escaped returns the log as pre-escaped HTML.
func (b *logBuffer) escaped() string {
	return html.EscapeString(strings.Join(b.lines, "\n"))
}

// NewRouter builds the gin engine for the web shell.
func NewRouter(runner Runner) *gin.Engine {
	router := gin.Default()
	router.Use(sentry.GinMiddleware())

	router.GET("/", func(c *gin.Context) {
		banner := ""
		if err := runner.AuthError(); err != nil {
			banner = "Spotify authentication failed. Runs are disabled until credentials are fixed."
		}
		page := fmt.Sprintf(pages.IndexPage, banner, runRows(runner.RecentRuns(5)))
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
	})

	router.POST("/create", func(c *gin.Context) {
		name := strings.TrimSpace(c.PostForm("name"))
		if name == "" {
			c.String(http.StatusBadRequest, "playlist name is required")
			return
		}

		source := controller.Source{URL: strings.TrimSpace(c.PostForm("source_url"))}
		if source.URL == "" {
			content, err := uploadedContent(c)
			if err != nil {
				c.String(http.StatusBadRequest, "could not read uploaded file: %v", err)
				return
			}
			source.Content = content
		}

		sink := &logBuffer{}
		if _, err := runner.CreatePlaylist(c.Request.Context(), source, name, sink); err != nil {
			log.Errorf("create run failed: %v", err)
		}
		renderResult(c, "Create playlist", sink)
	})

	router.POST("/dedupe", func(c *gin.Context) {
		playlistRef := strings.TrimSpace(c.PostForm("playlist"))
		if playlistRef == "" {
			c.String(http.StatusBadRequest, "playlist URL or ID is required")
			return
		}

		sink := &logBuffer{}
		if _, err := runner.Dedupe(c.Request.Context(), playlistRef, sink); err != nil {
			log.Errorf("dedupe run failed: %v", err)
		}
		renderResult(c, "Remove duplicates", sink)
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return router
}

// uploadedContent reads the optional file upload into memory; the parser
// core only ever sees raw text.
func uploadedContent(c *gin.Context) (string, error) {
	header, err := c.FormFile("file")
	if err != nil {
		if err == http.ErrMissingFile {
			return "", nil
		}
		return "", err
	}

	file, err := header.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func renderResult(c *gin.Context, title string, sink *logBuffer) {
	page := fmt.Sprintf(pages.ResultPage, title, title, sink.escaped())
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

func runRows(runs []database.RunRecord) string {
	if len(runs) == 0 {
		return `<tr><td colspan="6">No runs yet.</td></tr>`
	}

	var sb strings.Builder
	for _, run := range runs {
		sb.WriteString(fmt.Sprintf(
			"<tr><td>%s</td><td>%s</td><td>%d</td><td>%d</td><td>%d</td><td>%s</td></tr>",
			html.EscapeString(run.Kind),
			html.EscapeString(run.PlaylistName),
			run.Accepted,
			run.Missing,
			run.Removed,
			run.RanAt.Format("2006-01-02 15:04"),
		))
	}
	return sb.String()
}
