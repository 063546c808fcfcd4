// Package lookup binds the search controller to the GitHub user directory.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-logr/logr"
	"github.com/google/go-github/v52/github"
	"golang.org/x/oauth2"

	"usersearch/internal/domain"
)

// GitHub logins are alphanumeric with inner hyphens, at most 39 characters.
// Anything else cannot name a user and, like "." or "..", could resolve to
// another API path.
var loginPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]{0,38}$`)

// GitHubClient looks users up through the GitHub REST API
type GitHubClient struct {
	gh  *github.Client
	log logr.Logger
}

// Option configures a GitHubClient
type Option func(*GitHubClient) error

// WithBaseURL points the client at another API root, such as a GitHub
// Enterprise server or a test server
func WithBaseURL(raw string) Option {
	return func(c *GitHubClient) error {
		if !strings.HasSuffix(raw, "/") {
			raw += "/"
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid base url %q: %w", raw, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid base url %q: missing scheme or host", raw)
		}
		c.gh.BaseURL = u
		return nil
	}
}

// WithLogger sets the logger used for request diagnostics
func WithLogger(log logr.Logger) Option {
	return func(c *GitHubClient) error {
		c.log = log
		return nil
	}
}

// NewHTTPClient returns a client that sends token as a bearer credential.
// With an empty token requests are unauthenticated and subject to the
// anonymous rate limit. A base *http.Client may be carried in ctx under
// oauth2.HTTPClient.
func NewHTTPClient(ctx context.Context, token string) *http.Client {
	if token == "" {
		if hc, ok := ctx.Value(oauth2.HTTPClient).(*http.Client); ok && hc != nil {
			return hc
		}
		return &http.Client{}
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return oauth2.NewClient(ctx, ts)
}

// NewGitHubClient creates a lookup client on top of httpClient
func NewGitHubClient(httpClient *http.Client, opts ...Option) (*GitHubClient, error) {
	c := &GitHubClient{
		gh:  github.NewClient(httpClient),
		log: logr.Discard(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Lookup fetches a single user. It returns domain.ErrUserNotFound for an
// unknown login and a *domain.TransportError for every other failure.
func (c *GitHubClient) Lookup(ctx context.Context, username string) (*domain.UserRecord, error) {
	name := strings.TrimSpace(username)
	if name == "" {
		// an empty login would fetch the authenticated user instead
		return nil, domain.ErrEmptyQuery
	}
	if !loginPattern.MatchString(name) {
		c.log.V(1).Info("not a valid login", "username", name)
		return nil, domain.ErrUserNotFound
	}

	user, resp, err := c.gh.Users.Get(ctx, url.PathEscape(name))
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		if status == http.StatusNotFound {
			c.log.V(1).Info("user not found", "username", name)
			return nil, domain.ErrUserNotFound
		}
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", domain.ErrTimeout, err)
		}
		var rle *github.RateLimitError
		if errors.As(err, &rle) {
			c.log.Info("rate limited", "username", name, "reset", rle.Rate.Reset.Time)
		}
		return nil, &domain.TransportError{Username: name, Status: status, Err: err}
	}
	if user == nil {
		return nil, nil
	}
	if user.GetLogin() == "" {
		// a 200 without a login is some other resource, not a user
		c.log.V(1).Info("response carried no login", "username", name)
		return nil, domain.ErrUserNotFound
	}

	c.log.V(1).Info("user found", "username", name, "login", user.GetLogin())
	return &domain.UserRecord{
		Login:      user.GetLogin(),
		Name:       user.GetName(),
		AvatarURL:  user.GetAvatarURL(),
		ProfileURL: user.GetHTMLURL(),
	}, nil
}
