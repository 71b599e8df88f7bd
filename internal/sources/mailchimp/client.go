// Package mailchimp implements the List Service client against the Mailchimp
// Marketing API v3.
package mailchimp

import (
	"context"
	"crypto/md5" //nolint:gosec // Mailchimp addresses members by the MD5 of the email
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/agentstation/contactsync/internal/transport"
	"github.com/agentstation/contactsync/pkg/constants"
	"github.com/agentstation/contactsync/pkg/contacts"
	"github.com/agentstation/contactsync/pkg/errors"
	"github.com/agentstation/contactsync/pkg/logging"
)

// ServiceName identifies Mailchimp in errors and logs.
const ServiceName = "mailchimp"

// Config holds the settings needed to reach one audience.
type Config struct {
	APIKey string
	ListID string
	// BaseURL overrides the data-center URL derived from the API key.
	BaseURL  string
	PageSize int
}

// Validate checks the configuration and fills in defaults.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return errors.NewConfigError(ServiceName, "MAILCHIMP_API_KEY is not set", errors.ErrAPIKeyRequired)
	}
	if c.ListID == "" {
		c.ListID = constants.DefaultMailchimpListID
	}
	if c.PageSize <= 0 {
		c.PageSize = constants.DefaultPageSize
	}
	if c.PageSize > constants.MaxPageSize {
		return errors.NewValidationError("mailchimp.page_size", c.PageSize,
			fmt.Sprintf("must be at most %d", constants.MaxPageSize))
	}
	if c.BaseURL == "" {
		dc, err := DataCenter(c.APIKey)
		if err != nil {
			return err
		}
		c.BaseURL = fmt.Sprintf("https://%s.api.mailchimp.com/3.0", dc)
	}
	return nil
}

// DataCenter returns the data center encoded in the API key suffix, e.g.
// "us6" for "0123abcd-us6".
func DataCenter(apiKey string) (string, error) {
	_, dc, ok := strings.Cut(strings.TrimSpace(apiKey), "-")
	if !ok || dc == "" {
		return "", errors.NewConfigError(ServiceName, "API key has no data center suffix", errors.ErrAPIKeyInvalid)
	}
	return dc, nil
}

// MemberHash returns the subscriber hash Mailchimp uses to address a member:
// the hex MD5 of the lower-cased email.
func MemberHash(email string) string {
	sum := md5.Sum([]byte(contacts.NormalizeEmail(email))) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// Client reads and writes members of a single audience.
type Client struct {
	transport *transport.Client
	cfg       Config
	endpoint  string
}

// NewClient creates a client for the configured audience.
func NewClient(cfg Config, opts ...transport.Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		transport: transport.New(ServiceName, &transport.BasicAuth{Username: "anystring", Password: cfg.APIKey}, opts...),
		cfg:       cfg,
		endpoint:  strings.TrimRight(cfg.BaseURL, "/") + "/lists/" + url.PathEscape(cfg.ListID) + "/members",
	}, nil
}

// FetchAll implements reconcile.ListService. Pages are requested until one
// comes back shorter than the page size.
func (c *Client) FetchAll(ctx context.Context) (map[string]contacts.Subscriber, error) {
	subscribers := make(map[string]contacts.Subscriber)
	ctx = logging.WithOperation(logging.WithStore(ctx, ServiceName), "fetch")
	logger := logging.FromContext(ctx)

	for offset := 0; ; offset += c.cfg.PageSize {
		if err := ctx.Err(); err != nil {
			return nil, errors.WrapCanceled("fetch mailchimp members", err)
		}

		q := url.Values{}
		q.Set("offset", strconv.Itoa(offset))
		q.Set("count", strconv.Itoa(c.cfg.PageSize))

		var page membersResponse
		if err := c.transport.JSON(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil, &page); err != nil {
			return nil, errors.WrapResource("fetch", "subscribers", fmt.Sprintf("offset %d", offset), err)
		}

		for _, m := range page.Members {
			sub := m.toSubscriber()
			key := sub.Key()
			if key == "" {
				continue
			}
			subscribers[key] = sub
		}

		logger.Debug().
			Int("offset", offset).
			Int("members", len(page.Members)).
			Int("total_items", page.TotalItems).
			Msg("Fetched member page")

		if len(page.Members) < c.cfg.PageSize {
			return subscribers, nil
		}
	}
}

// CreateSubscriber implements reconcile.ListService. New members are always
// created as pending so the list sends its confirmation email.
func (c *Client) CreateSubscriber(ctx context.Context, sub contacts.Subscriber) (contacts.Subscriber, error) {
	var created member
	if err := c.transport.JSON(ctx, http.MethodPost, c.endpoint, newCreateRequest(sub), &created); err != nil {
		return contacts.Subscriber{}, errors.WrapResource("create", "subscriber", sub.Email, err)
	}

	ctx = logging.WithStore(ctx, ServiceName)
	logging.FromContext(ctx).Debug().Str("member_id", created.ID).Str("status", created.Status).Msg("Created member")
	return created.toSubscriber(), nil
}

// PatchSubscriber implements reconcile.ListService.
func (c *Client) PatchSubscriber(ctx context.Context, email string, patch contacts.SubscriberPatch) (contacts.Subscriber, error) {
	if contacts.NormalizeEmail(email) == "" {
		return contacts.Subscriber{}, errors.NewValidationError("email", email, "email is required")
	}

	var updated member
	endpoint := c.endpoint + "/" + MemberHash(email)
	if err := c.transport.JSON(ctx, http.MethodPatch, endpoint, newPatchRequest(patch), &updated); err != nil {
		return contacts.Subscriber{}, errors.WrapResource("patch", "subscriber", email, err)
	}

	ctx = logging.WithStore(ctx, ServiceName)
	logging.FromContext(ctx).Debug().Str("member_id", updated.ID).Msg("Patched member")
	return updated.toSubscriber(), nil
}
