// Package google mirrors time entries into Google Calendar and performs the
// OAuth handshake that links an employee's calendar.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/makarovada/legal-time/internal/application"
)

// ErrNotLinked is returned when the owner has no stored credential.
var ErrNotLinked = errors.New("calendar not linked")

// Config holds the OAuth client registration.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Client implements application.CalendarSync and application.CalendarLinker.
type Client struct {
	oauth  *oauth2.Config
	sealer *Sealer
	extra  []option.ClientOption
}

var (
	_ application.CalendarSync   = (*Client)(nil)
	_ application.CalendarLinker = (*Client)(nil)
)

// ClientOption customises Client.
type ClientOption func(*Client)

// WithServiceOptions appends options to every calendar service the client
// builds, e.g. a custom endpoint.
func WithServiceOptions(opts ...option.ClientOption) ClientOption {
	return func(c *Client) {
		c.extra = append(c.extra, opts...)
	}
}

// NewClient builds a client using the Google OAuth endpoint.
func NewClient(cfg Config, sealer *Sealer, opts ...ClientOption) (*Client, error) {
	if sealer == nil {
		return nil, fmt.Errorf("google calendar: sealer is required")
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("google calendar: client id and secret are required")
	}
	c := &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     googleoauth.Endpoint,
			Scopes:       []string{calendar.CalendarScope, calendar.CalendarEventsScope},
		},
		sealer: sealer,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// AuthURL returns the consent page URL carrying state.
func (c *Client) AuthURL(state string) string {
	return c.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for a token and returns it sealed.
func (c *Client) Exchange(ctx context.Context, code string) ([]byte, error) {
	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	raw, err := json.Marshal(token)
	if err != nil {
		return nil, fmt.Errorf("encode token: %w", err)
	}
	return c.sealer.Seal(raw)
}

// PushEvent inserts a new event and returns its ID.
func (c *Client) PushEvent(ctx context.Context, owner application.Employee, entry application.TimeEntry, matter application.Matter, activity application.ActivityType) (string, error) {
	svc, err := c.service(ctx, owner)
	if err != nil {
		return "", err
	}
	created, err := svc.Events.Insert(calendarID(owner), buildEvent(entry, matter, activity)).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("insert event: %w", err)
	}
	return created.Id, nil
}

// UpdateEvent rewrites the event behind handle. An event removed on the
// provider side is recreated and the new ID returned.
func (c *Client) UpdateEvent(ctx context.Context, owner application.Employee, entry application.TimeEntry, matter application.Matter, activity application.ActivityType, handle string) (string, error) {
	svc, err := c.service(ctx, owner)
	if err != nil {
		return "", err
	}
	event := buildEvent(entry, matter, activity)
	updated, err := svc.Events.Update(calendarID(owner), handle, event).Context(ctx).Do()
	if isGone(err) {
		created, insertErr := svc.Events.Insert(calendarID(owner), event).Context(ctx).Do()
		if insertErr != nil {
			return "", fmt.Errorf("recreate event: %w", insertErr)
		}
		return created.Id, nil
	}
	if err != nil {
		return "", fmt.Errorf("update event: %w", err)
	}
	return updated.Id, nil
}

// DeleteEvent removes the event. Events already gone count as deleted.
func (c *Client) DeleteEvent(ctx context.Context, owner application.Employee, handle string) error {
	svc, err := c.service(ctx, owner)
	if err != nil {
		return err
	}
	if err := svc.Events.Delete(calendarID(owner), handle).Context(ctx).Do(); err != nil && !isGone(err) {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (c *Client) service(ctx context.Context, owner application.Employee) (*calendar.Service, error) {
	if !owner.CalendarConnected() {
		return nil, ErrNotLinked
	}
	raw, err := c.sealer.Open(owner.CalendarToken)
	if err != nil {
		return nil, err
	}
	var token oauth2.Token
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}

	opts := append([]option.ClientOption{option.WithTokenSource(c.oauth.TokenSource(ctx, &token))}, c.extra...)
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("build calendar service: %w", err)
	}
	return svc, nil
}

func isGone(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone
}
