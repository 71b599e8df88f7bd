// Package constants provides shared constants used throughout the contactsync codebase.
// This includes timeouts, page sizes, store defaults and other values that should be
// consistent across the application.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for HTTP requests to either store
	DefaultHTTPTimeout = 30 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limit constants define various limits and capacities
const (
	// DefaultMinSnapshotSize is the smallest snapshot either store may return
	// before a run is aborted as a probable truncated fetch.
	DefaultMinSnapshotSize = 100

	// DefaultPageSize is the page size used for Mailchimp offset pagination
	DefaultPageSize = 100

	// MaxAirtablePageSize is the largest page the Airtable list endpoint accepts
	MaxAirtablePageSize = 100

	// MaxPageSize is the largest page the Mailchimp members endpoint accepts
	MaxPageSize = 1000
)

// Store defaults
const (
	// DefaultAirtableBaseURL is the Airtable REST API root
	DefaultAirtableBaseURL = "https://api.airtable.com/v0"

	// DefaultAirtableBaseID is the base holding the contact roster
	DefaultAirtableBaseID = "appfk7VT7P96TwWdg"

	// DefaultAirtableTable is the table (or view) holding contact rows
	DefaultAirtableTable = "Art World"

	// DefaultMailchimpListID is the community mailing list
	DefaultMailchimpListID = "85012e451a"

	// DefaultAWSRegion is the region of the survey responses table
	DefaultAWSRegion = "us-east-1"

	// DefaultSurveyTable is the DynamoDB table holding alpha survey answers
	DefaultSurveyTable = "SurveyResponses"
)

// AddToListYes is the only "add to list" column value that opts a row in
// to subscriber creation.
const AddToListYes = "Yes"
