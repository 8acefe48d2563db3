package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"planets-api/internal/shared/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

type gitHubUserInfo struct {
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

type GitHubProvider struct {
	config *oauth2.Config
}

// NewGitHubProvider creates a new GitHub OAuth provider
func NewGitHubProvider(cfg *config.Config) *GitHubProvider {
	gh := cfg.OAuth.GitHub

	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     gh.ClientID,
			ClientSecret: gh.ClientSecret,
			RedirectURL:  gh.CallbackURL,
			Scopes:       gh.Scopes,
			Endpoint:     github.Endpoint,
		},
	}
}

func (p *GitHubProvider) Name() string {
	return "github"
}

// GetAuthURL generates the OAuth authorization URL
func (p *GitHubProvider) GetAuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// ExchangeCode exchanges an authorization code for tokens
func (p *GitHubProvider) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	logger := slog.With("provider", "github", "operation", "exchange_code")
	logger.Debug("Exchanging authorization code for GitHub access token")

	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		logger.Error("Failed to exchange GitHub authorization code", "error", err)
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	logger.Debug("Successfully exchanged code for token")
	return token, nil
}

// GetUserInfo fetches user information from the GitHub API
func (p *GitHubProvider) GetUserInfo(ctx context.Context, token *oauth2.Token) (*OAuthUser, error) {
	client := p.config.Client(ctx, token)

	logger := slog.With("provider", "github", "operation", "get_user_info")
	logger.Debug("Requesting user info from GitHub API")

	resp, err := client.Get("https://api.github.com/user")
	if err != nil {
		logger.Error("Failed to request user info from GitHub", "error", err)
		return nil, fmt.Errorf("failed to request user info from GitHub: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Error("GitHub API returned error status",
			"status_code", resp.StatusCode,
			"status", resp.Status)
		return nil, fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	var userInfo gitHubUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		logger.Error("Failed to decode GitHub user info", "error", err)
		return nil, fmt.Errorf("failed to decode GitHub user info: %w", err)
	}

	if userInfo.Login == "" {
		logger.Error("GitHub user info missing login")
		return nil, fmt.Errorf("GitHub user info missing login")
	}

	logger.Debug("Successfully retrieved GitHub user info",
		"username", userInfo.Login,
		"has_name", userInfo.Name != "",
		"has_avatar", userInfo.AvatarURL != "")

	return &OAuthUser{
		Username:  userInfo.Login,
		Name:      userInfo.Name,
		AvatarURL: userInfo.AvatarURL,
	}, nil
}
