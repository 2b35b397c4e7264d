package spotify

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	spotifyclient "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/semekork/spotify-playlist-Generator/config"
)

// scopes covers playlist creation/mutation, reading private playlists for
// dedup, and cover uploads.
var scopes = []string{
	spotifyauth.ScopePlaylistModifyPrivate,
	spotifyauth.ScopePlaylistModifyPublic,
	spotifyauth.ScopePlaylistReadPrivate,
	spotifyauth.ScopeImageUpload,
}

// authenticate restores a cached token when one exists, otherwise runs the
// interactive authorization-code flow with a short-lived local callback
// server. The returned client refreshes its token automatically.
func authenticate(ctx context.Context, cfg config.SpotifyConfig) (*spotifyclient.Client, error) {
	authenticator := spotifyauth.New(
		spotifyauth.WithClientID(cfg.ClientID),
		spotifyauth.WithClientSecret(cfg.ClientSecret),
		spotifyauth.WithRedirectURL(cfg.RedirectURI),
		spotifyauth.WithScopes(scopes...),
	)

	if token, err := loadToken(cfg.TokenCachePath); err == nil {
		log.Debugf("using cached Spotify token from %s", cfg.TokenCachePath)
		return spotifyclient.New(authenticator.Client(ctx, token)), nil
	}

	token, err := authorizeInteractive(ctx, authenticator, cfg.RedirectURI)
	if err != nil {
		return nil, err
	}

	if cfg.TokenCachePath != "" {
		if err := saveToken(cfg.TokenCachePath, token); err != nil {
			log.Warnf("could not cache Spotify token: %v", err)
		}
	}

	return spotifyclient.New(authenticator.Client(ctx, token)), nil
}

// authorizeInteractive serves the OAuth callback on the redirect URI's port
// and blocks until the user completes the browser flow.
func authorizeInteractive(ctx context.Context, authenticator *spotifyauth.Authenticator, redirectURI string) (*oauth2.Token, error) {
	redirect, err := url.Parse(redirectURI)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect URI %q: %w", redirectURI, err)
	}

	state, err := randomState()
	if err != nil {
		return nil, err
	}

	type result struct {
		token *oauth2.Token
		err   error
	}
	results := make(chan result, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(redirect.Path, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			results <- result{err: errors.New("oauth state mismatch")}
			return
		}

		token, err := authenticator.Token(r.Context(), state, r)
		if err != nil {
			http.Error(w, "token exchange failed", http.StatusInternalServerError)
			results <- result{err: fmt.Errorf("token exchange failed: %w", err)}
			return
		}

		fmt.Fprintln(w, "Authentication complete. You can close this tab.")
		results <- result{token: token}
	})

	server := &http.Server{Addr: redirect.Host, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			results <- result{err: err}
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Infof("Open the following URL in your browser to authorize:\n%s", authenticator.AuthURL(state))

	select {
	case res := <-results:
		return res.token, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func loadToken(path string) (*oauth2.Token, error) {
	if path == "" {
		return nil, errors.New("no token cache configured")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("corrupt token cache: %w", err)
	}
	if token.RefreshToken == "" && !token.Valid() {
		return nil, errors.New("cached token expired with no refresh token")
	}
	return &token, nil
}

func saveToken(path string, token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
