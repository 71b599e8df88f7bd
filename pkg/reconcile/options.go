package reconcile

import (
	"github.com/agentstation/contactsync/pkg/authority"
	"github.com/agentstation/contactsync/pkg/constants"
	"github.com/agentstation/contactsync/pkg/errors"
)

// Options controls a reconciliation pass.
type Options struct {
	DryRun          bool                // Compute and log decisions without writing
	MinSnapshotSize int                 // Abort when either snapshot is smaller
	Authority       authority.Authority // Field precedence policy
}

// Defaults returns the default pass options.
func Defaults() *Options {
	return &Options{
		DryRun:          false,
		MinSnapshotSize: constants.DefaultMinSnapshotSize,
		Authority:       authority.Default(),
	}
}

// Apply applies the given options.
func (o *Options) Apply(opts ...Option) *Options {
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Validate checks if the options are usable.
func (o *Options) Validate() error {
	if o.MinSnapshotSize < 0 {
		return &errors.ValidationError{
			Field:   "MinSnapshotSize",
			Value:   o.MinSnapshotSize,
			Message: "minimum snapshot size must be non-negative",
		}
	}
	if o.Authority == nil {
		return &errors.ValidationError{Field: "Authority", Message: "authority policy is required"}
	}
	// Status and tags can only flow list -> records: the list API has no
	// way to replace a member's tag set in one write.
	for _, field := range []string{authority.FieldStatus, authority.FieldTags} {
		if owner := o.Authority.Owner(field); owner != authority.List {
			return &errors.ValidationError{
				Field:   "Authority",
				Value:   owner,
				Message: field + " must be owned by the list service",
			}
		}
	}
	return nil
}

// Option configures pass Options.
type Option func(*Options)

// WithDryRun configures dry run mode.
func WithDryRun(dryRun bool) Option {
	return func(o *Options) {
		o.DryRun = dryRun
	}
}

// WithMinSnapshotSize overrides the truncated-fetch guard threshold.
func WithMinSnapshotSize(n int) Option {
	return func(o *Options) {
		o.MinSnapshotSize = n
	}
}

// WithAuthority replaces the field precedence policy.
func WithAuthority(a authority.Authority) Option {
	return func(o *Options) {
		o.Authority = a
	}
}
