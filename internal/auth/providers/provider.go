package providers

import (
	"context"

	"golang.org/x/oauth2"
)

// OAuthUser is the normalized user info returned by OAuth providers. Username
// is the provider-side handle that becomes the session identity.
type OAuthUser struct {
	Username  string
	Name      string
	AvatarURL string
}

// OAuthProvider is the interface OAuth providers implement.
type OAuthProvider interface {
	Name() string
	GetAuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error)
	GetUserInfo(ctx context.Context, token *oauth2.Token) (*OAuthUser, error)
}
