// Package airtable implements the Records Store client against the Airtable
// REST API.
package airtable

import (
	"context"
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

// ServiceName identifies Airtable in errors and logs.
const ServiceName = "airtable"

// Config holds the settings needed to reach one Airtable table.
type Config struct {
	APIKey   string
	BaseID   string
	Table    string
	BaseURL  string
	PageSize int
	Columns  Columns
}

// Validate checks the configuration and fills in defaults.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return errors.NewConfigError(ServiceName, "AIRTABLE_API_KEY is not set", errors.ErrAPIKeyRequired)
	}
	if c.BaseID == "" {
		c.BaseID = constants.DefaultAirtableBaseID
	}
	if c.Table == "" {
		c.Table = constants.DefaultAirtableTable
	}
	if c.BaseURL == "" {
		c.BaseURL = constants.DefaultAirtableBaseURL
	}
	if c.PageSize <= 0 {
		c.PageSize = constants.DefaultPageSize
	}
	if c.PageSize > constants.MaxAirtablePageSize {
		return errors.NewValidationError("airtable.page_size", c.PageSize,
			fmt.Sprintf("must be at most %d", constants.MaxAirtablePageSize))
	}
	if c.Columns == (Columns{}) {
		c.Columns = DefaultColumns()
	}
	return c.Columns.Validate()
}

// FetchStats describes a completed fetch.
type FetchStats struct {
	Pages      int
	Fetched    int
	Dropped    int
	Duplicates int
}

// Client reads and writes contact rows in a single Airtable table.
type Client struct {
	transport *transport.Client
	cfg       Config
	endpoint  string
}

// NewClient creates a client for the configured table.
func NewClient(cfg Config, opts ...transport.Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		transport: transport.New(ServiceName, &transport.BearerAuth{Token: cfg.APIKey}, opts...),
		cfg:       cfg,
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + "/" +
			url.PathEscape(cfg.BaseID) + "/" + url.PathEscape(cfg.Table),
	}, nil
}

// Columns returns the column table in use.
func (c *Client) Columns() Columns {
	return c.cfg.Columns
}

// Fetch pages through the whole table. Rows without an email are dropped and
// counted; when two rows share an email the later one wins.
func (c *Client) Fetch(ctx context.Context) (map[string]contacts.Row, FetchStats, error) {
	rows := make(map[string]contacts.Row)
	var stats FetchStats
	offset := ""

	for {
		if err := ctx.Err(); err != nil {
			return nil, stats, errors.WrapCanceled("fetch airtable records", err)
		}

		q := url.Values{}
		q.Set("pageSize", strconv.Itoa(c.cfg.PageSize))
		if offset != "" {
			q.Set("offset", offset)
		}

		var page listResponse
		if err := c.transport.JSON(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil, &page); err != nil {
			return nil, stats, errors.WrapResource("fetch", "rows", fmt.Sprintf("page %d", stats.Pages+1), err)
		}
		stats.Pages++

		for _, rec := range page.Records {
			stats.Fetched++
			row := c.cfg.Columns.toRow(rec)
			key := row.Key()
			if key == "" {
				stats.Dropped++
				continue
			}
			if _, dup := rows[key]; dup {
				stats.Duplicates++
			}
			rows[key] = row
		}

		if page.Offset == "" {
			return rows, stats, nil
		}
		offset = page.Offset
	}
}

// FetchAll implements reconcile.RecordsStore.
func (c *Client) FetchAll(ctx context.Context) (map[string]contacts.Row, error) {
	ctx = logging.WithOperation(logging.WithStore(ctx, ServiceName), "fetch")
	rows, stats, err := c.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	logger := logging.FromContext(ctx)
	if stats.Dropped > 0 {
		logger.Warn().
			Int("dropped", stats.Dropped).
			Str("column", c.cfg.Columns.Email).
			Msg("Dropped records without an email")
	}
	if stats.Duplicates > 0 {
		logger.Warn().
			Int("duplicates", stats.Duplicates).
			Msg("Found records sharing an email, keeping the last one")
	}
	logger.Debug().
		Int("pages", stats.Pages).
		Int("fetched", stats.Fetched).
		Msg("Fetched records")
	return rows, nil
}

// CreateRow implements reconcile.RecordsStore.
func (c *Client) CreateRow(ctx context.Context, row contacts.Row) (contacts.Row, error) {
	req := writeRequest{Fields: c.cfg.Columns.createFields(row), Typecast: true}

	var created record
	if err := c.transport.JSON(ctx, http.MethodPost, c.endpoint, req, &created); err != nil {
		return contacts.Row{}, errors.WrapResource("create", "row", row.Email, err)
	}

	ctx = logging.WithStore(ctx, ServiceName)
	logging.FromContext(ctx).Debug().Str("record_id", created.ID).Msg("Created record")
	return c.cfg.Columns.toRow(created), nil
}

// PatchRow implements reconcile.RecordsStore. Only the fields set on patch
// are sent.
func (c *Client) PatchRow(ctx context.Context, id string, patch contacts.RowPatch) (contacts.Row, error) {
	if id == "" {
		return contacts.Row{}, errors.NewValidationError("id", id, "record id is required")
	}
	req := writeRequest{Fields: c.cfg.Columns.patchFields(patch), Typecast: true}

	var updated record
	if err := c.transport.JSON(ctx, http.MethodPatch, c.endpoint+"/"+url.PathEscape(id), req, &updated); err != nil {
		return contacts.Row{}, errors.WrapResource("patch", "row", id, err)
	}

	ctx = logging.WithStore(ctx, ServiceName)
	logging.FromContext(ctx).Debug().Str("record_id", id).Int("fields", len(req.Fields)).Msg("Patched record")
	return c.cfg.Columns.toRow(updated), nil
}
