// Package surveys reads alpha survey responses from DynamoDB and renders them
// as the plain-text block stored on a contact row.
package surveys

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/agentstation/contactsync/pkg/constants"
	"github.com/agentstation/contactsync/pkg/errors"
)

// ServiceName identifies DynamoDB in errors and logs.
const ServiceName = "dynamodb"

// API is the subset of the DynamoDB client used by Store.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// Config holds the settings needed to reach the survey table.
type Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Table           string
}

// Validate checks the configuration and fills in defaults.
func (c *Config) Validate() error {
	if c.AccessKeyID == "" || c.SecretAccessKey == "" {
		return errors.NewConfigError(ServiceName, "AWS_ACCESS_KEY_ID and AWS_ACCESS_SECRET must be set", errors.ErrAPIKeyRequired)
	}
	if c.Region == "" {
		c.Region = constants.DefaultAWSRegion
	}
	if c.Table == "" {
		c.Table = constants.DefaultSurveyTable
	}
	return nil
}

// Response is one stored survey submission.
type Response struct {
	Email           string   `dynamodbav:"Email"`
	SelfDefinition  []string `dynamodbav:"SelfDefinition,stringset"`
	Excitement      []string `dynamodbav:"Excitement,stringset"`
	HowCanWeHelp    []string `dynamodbav:"HowCanWeHelp,stringset"`
	Location        string   `dynamodbav:"Location"`
	WhereArt        []string `dynamodbav:"WhereArt,stringset"`
	Involvement     string   `dynamodbav:"Involvement"`
	CurrentShowcase []string `dynamodbav:"CurrentShowcase,stringset"`
}

// Store reads survey responses keyed by email.
type Store struct {
	api   API
	table string
}

// NewStore builds a DynamoDB client from static credentials.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, errors.NewConfigError(ServiceName, "failed to load AWS configuration", err)
	}

	return NewStoreWithAPI(dynamodb.NewFromConfig(awsCfg), cfg.Table), nil
}

// NewStoreWithAPI wraps an existing DynamoDB API.
func NewStoreWithAPI(api API, table string) *Store {
	if table == "" {
		table = constants.DefaultSurveyTable
	}
	return &Store{api: api, table: table}
}

// Get returns the survey submitted under email. The lookup uses the email as
// given. A missing item is reported as a NotFoundError.
func (s *Store) Get(ctx context.Context, email string) (*Response, error) {
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"Email": &types.AttributeValueMemberS{Value: email},
		},
	})
	if err != nil {
		return nil, errors.WrapResource("get", "survey", email, errors.WrapAPI(ServiceName, 0, err))
	}
	if len(out.Item) == 0 {
		return nil, errors.NewNotFoundError("survey", email)
	}

	var resp Response
	if err := attributevalue.UnmarshalMap(out.Item, &resp); err != nil {
		return nil, errors.WrapParse("dynamodb", s.table, err)
	}
	return &resp, nil
}

type question struct {
	text  string
	value func(*Response) any
}

// questions lists every rendered answer in output order.
var questions = []question{
	{"How do you define yourself?", func(r *Response) any { return r.SelfDefinition }},
	{"What most excites you about Cohart?", func(r *Response) any { return r.Excitement }},
	{"How can we improve your art experience?", func(r *Response) any { return r.HowCanWeHelp }},
	{"Where are you based?", func(r *Response) any { return r.Location }},
	{"Where do you love to explore art and culture?", func(r *Response) any { return r.WhereArt }},
	{"How do you want to be involved?", func(r *Response) any { return r.Involvement }},
	{"How do you showcase your artwork or collections now?", func(r *Response) any { return r.CurrentShowcase }},
}

// Format renders every answered question as "<question> <answer>\n".
// Multi-select answers are written as {'a', 'b'}.
func Format(resp *Response) string {
	if resp == nil {
		return ""
	}

	var b strings.Builder
	for _, q := range questions {
		var answer string
		switch v := q.value(resp).(type) {
		case string:
			answer = v
		case []string:
			if v == nil {
				continue
			}
			answer = formatSet(v)
		}
		if answer == "" {
			continue
		}
		b.WriteString(q.text)
		b.WriteByte(' ')
		b.WriteString(answer)
		b.WriteByte('\n')
	}
	return b.String()
}

func formatSet(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + v + "'"
	}
	return "{" + strings.Join(quoted, ", ") + "}"
}
