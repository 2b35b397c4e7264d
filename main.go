package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	nested "github.com/antonfisher/nested-logrus-formatter"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	appConfig "github.com/semekork/spotify-playlist-Generator/config"
	"github.com/semekork/spotify-playlist-Generator/controller"
	"github.com/semekork/spotify-playlist-Generator/pipeline"
	"github.com/semekork/spotify-playlist-Generator/sentry"
	"github.com/semekork/spotify-playlist-Generator/tui"
	"github.com/semekork/spotify-playlist-Generator/web"
)

// stdoutSink prints pipeline progress lines for the CLI commands.
type stdoutSink struct{}

func (stdoutSink) Append(line string) {
	fmt.Println(line)
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warnf("Error loading .env file: %v", err)
	}

	cfg := appConfig.Load()
	setupLogging(cfg.Options.LogLevel)
	sentry.Init()

	app := &cli.Command{
		Name:  "playlist-generator",
		Usage: "Build and deduplicate Spotify playlists from CSVs, text files and URLs",
		Commands: []*cli.Command{
			serveCommand(cfg),
			tuiCommand(cfg),
			createCommand(cfg),
			dedupeCommand(cfg),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatalf("application error: %v", err)
	}
}

func setupLogging(level string) {
	log.SetFormatter(&nested.Formatter{
		HideKeys:        true,
		TimestampFormat: "15:04:05",
	})

	parsed, err := log.ParseLevel(level)
	if err != nil {
		parsed = log.InfoLevel
	}
	log.SetLevel(parsed)
}

func serveCommand(cfg *appConfig.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web form",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctrl := controller.New(ctx, cfg)
			defer ctrl.Close()

			port := cmd.String("port")
			if port == "" {
				port = cfg.Options.Port
			}
			if port == "" {
				port = "8080"
			}

			router := web.NewRouter(ctrl)
			log.Infof("listening on :%s", port)
			return router.Run(":" + port)
		},
	}
}

func tuiCommand(cfg *appConfig.Config) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Run the interactive terminal UI",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctrl := controller.New(ctx, cfg)
			defer ctrl.Close()

			// Keep logrus off the terminal while the TUI owns it.
			logFile, err := os.OpenFile("playlist-generator.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err == nil {
				log.SetOutput(logFile)
				defer logFile.Close()
			}

			model := tui.NewModel(ctx, ctrl)
			if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
				return fmt.Errorf("error running TUI: %w", err)
			}
			return nil
		},
	}
}

func createCommand(cfg *appConfig.Config) *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Create a playlist from a song list file or URL",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "source",
				Aliases:  []string{"s"},
				Usage:    "CSV/text file path, or a YouTube / Apple Music URL",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "name",
				Aliases:  []string{"n"},
				Usage:    "Name of the playlist to create",
				Required: true,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctrl := controller.New(ctx, cfg)
			defer ctrl.Close()

			source := controller.Source{}
			raw := cmd.String("source")
			if isURL(raw) {
				source.URL = raw
			} else {
				source.Path = raw
			}

			report, err := ctrl.CreatePlaylist(ctx, source, cmd.String("name"), stdoutSink{})
			if err != nil {
				if errors.Is(err, pipeline.ErrNoValidTracks) {
					os.Exit(1)
				}
				return err
			}
			log.Debugf("created playlist %s with %d tracks", report.PlaylistID, report.Accepted)
			return nil
		},
	}
}

func dedupeCommand(cfg *appConfig.Config) *cli.Command {
	return &cli.Command{
		Name:  "dedupe",
		Usage: "Remove duplicate tracks from a playlist",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "playlist",
				Aliases:  []string{"l"},
				Usage:    "Playlist URL or ID",
				Required: true,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctrl := controller.New(ctx, cfg)
			defer ctrl.Close()

			report, err := ctrl.Dedupe(ctx, cmd.String("playlist"), stdoutSink{})
			if err != nil {
				return err
			}
			log.Debugf("removed %d of %d duplicates from %s", report.Removed, report.Found, report.PlaylistID)
			return nil
		},
	}
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
