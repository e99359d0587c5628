// Package refresher exchanges a stored refresh token for a new token pair at
// the host's OAuth token endpoint and writes the rotated credentials back.
// The endpoint is an opaque collaborator; this is a pass-through call, not an
// OAuth flow of our own.
package refresher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/mzhubr/claude-profiles/internal/config"
	"github.com/mzhubr/claude-profiles/internal/credstore"
)

// ErrNoRefreshToken means the credential record cannot be refreshed.
var ErrNoRefreshToken = errors.New("credential record has no refresh token")

// Refresher performs pass-through token refreshes.
type Refresher struct {
	cfg   *config.Config
	store *credstore.Store
	log   *logrus.Logger

	// HTTPClient overrides the default client when set; tests point it at a
	// local token endpoint.
	HTTPClient *http.Client
}

// New creates a Refresher.
func New(cfg *config.Config, store *credstore.Store, log *logrus.Logger) *Refresher {
	return &Refresher{cfg: cfg, store: store, log: log}
}

// Refresh exchanges the record's refresh token for a new pair. The returned
// record carries the rotated tokens and expiry; every field the tool does not
// model is preserved from the input.
func (r *Refresher) Refresh(ctx context.Context, rec *credstore.Record) (*credstore.Record, error) {
	if rec == nil || rec.RefreshToken == "" {
		return nil, ErrNoRefreshToken
	}

	conf := &oauth2.Config{
		ClientID: r.cfg.OAuth.ClientID,
		Endpoint: oauth2.Endpoint{
			TokenURL:  r.cfg.OAuth.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	if r.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, r.HTTPClient)
	}

	// A seed token with a past expiry forces the source to hit the endpoint.
	seed := &oauth2.Token{
		RefreshToken: rec.RefreshToken,
		Expiry:       time.Now().Add(-time.Minute),
	}
	token, err := conf.TokenSource(ctx, seed).Token()
	if err != nil {
		return nil, fmt.Errorf("refreshing token: %w", err)
	}

	updated := *rec
	updated.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		updated.RefreshToken = token.RefreshToken
	}
	if !token.Expiry.IsZero() {
		updated.ExpiresAt = token.Expiry.UnixMilli()
	}

	r.log.WithFields(logrus.Fields{
		"identity":   updated.Identity(),
		"expires_at": updated.ExpiresAt,
	}).Info("token refreshed")
	return &updated, nil
}

// RefreshFile refreshes the credential record stored at path in place.
func (r *Refresher) RefreshFile(ctx context.Context, path string) (*credstore.Record, error) {
	rec, ok := r.store.Read(path)
	if !ok {
		return nil, fmt.Errorf("no readable credential record at %s", path)
	}

	updated, err := r.Refresh(ctx, rec)
	if err != nil {
		return nil, err
	}
	if err := r.store.Write(path, updated); err != nil {
		return nil, err
	}
	return updated, nil
}
