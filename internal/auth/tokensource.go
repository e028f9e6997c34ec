package auth

import (
	"context"

	"golang.org/x/oauth2"
)

type refresher struct {
	ctx    context.Context
	client *Client
	token  *oauth2.Token
}

// Token refreshes through the auth service. The refresh token rotates, so
// the latest one is kept for the next call.
func (r *refresher) Token() (*oauth2.Token, error) {
	if r.token == nil || r.token.RefreshToken == "" {
		return nil, ErrNoSession
	}
	tok, err := r.client.Refresh(r.ctx, r.token.RefreshToken)
	if err != nil {
		return nil, err
	}
	r.token = tok
	return tok, nil
}

// TokenSource returns a source that hands out tok until it expires and then
// refreshes it. The source is safe for concurrent use.
func (c *Client) TokenSource(ctx context.Context, tok *oauth2.Token) oauth2.TokenSource {
	return oauth2.ReuseTokenSource(tok, &refresher{ctx: ctx, client: c, token: tok})
}
