// Package dynamodb implements bluelist.DocumentStore on a DynamoDB table
// keyed by the string attribute "id".
package dynamodb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/sagarc03/bluelist"
	"github.com/sagarc03/bluelist/database/internal"
)

// API is the subset of the DynamoDB client the store calls.
type API interface {
	GetItem(ctx context.Context, in *sdk.GetItemInput, optFns ...func(*sdk.Options)) (*sdk.GetItemOutput, error)
	PutItem(ctx context.Context, in *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error)
	UpdateItem(ctx context.Context, in *sdk.UpdateItemInput, optFns ...func(*sdk.Options)) (*sdk.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, in *sdk.DeleteItemInput, optFns ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error)
	Scan(ctx context.Context, in *sdk.ScanInput, optFns ...func(*sdk.Options)) (*sdk.ScanOutput, error)
	DescribeTable(ctx context.Context, in *sdk.DescribeTableInput, optFns ...func(*sdk.Options)) (*sdk.DescribeTableOutput, error)
	CreateTable(ctx context.Context, in *sdk.CreateTableInput, optFns ...func(*sdk.Options)) (*sdk.CreateTableOutput, error)
}

type item struct {
	ID        string         `dynamodbav:"id"`
	Type      string         `dynamodbav:"type"`
	Fields    map[string]any `dynamodbav:"fields"`
	CreatedAt string         `dynamodbav:"created_at"`
	UpdatedAt string         `dynamodbav:"updated_at"`
}

// decodeItem unmarshals a stored item, keeping numbers as json.Number so
// values wider than a float64 mantissa round-trip unchanged.
func decodeItem(m map[string]types.AttributeValue) (item, error) {
	var it item
	if err := attributevalue.UnmarshalMapWithOptions(m, &it, useNumber); err != nil {
		return item{}, err
	}
	for k, v := range it.Fields {
		it.Fields[k] = jsonNumbers(v)
	}
	return it, nil
}

func useNumber(o *attributevalue.DecoderOptions) {
	o.UseNumber = true
}

// jsonNumbers swaps attributevalue.Number for json.Number throughout v.
// The encoder already writes json.Number as an N attribute.
func jsonNumbers(v any) any {
	switch tv := v.(type) {
	case attributevalue.Number:
		return json.Number(tv)
	case []attributevalue.Number:
		out := make([]any, len(tv))
		for i, n := range tv {
			out[i] = json.Number(n)
		}
		return out
	case map[string]any:
		for k, e := range tv {
			tv[k] = jsonNumbers(e)
		}
		return tv
	case []any:
		for i, e := range tv {
			tv[i] = jsonNumbers(e)
		}
		return tv
	default:
		return v
	}
}

func (it item) record() bluelist.Record {
	fields := it.Fields
	if fields == nil {
		fields = map[string]any{}
	}
	return bluelist.Record{ID: it.ID, Type: it.Type, Fields: fields}
}

// DefaultTableWait bounds how long Migrate waits for a table to become ACTIVE.
const DefaultTableWait = 2 * time.Minute

// Store is a DynamoDB-backed document store.
type Store struct {
	api   API
	table string
	now   func() time.Time

	tableWait    time.Duration
	waitMinDelay time.Duration
	waitMaxDelay time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithTableWait sets how long Migrate polls for the table to become ACTIVE
// and the delay bounds between polls.
func WithTableWait(maxWait, minDelay, maxDelay time.Duration) Option {
	return func(s *Store) {
		s.tableWait = maxWait
		s.waitMinDelay = minDelay
		s.waitMaxDelay = maxDelay
	}
}

// New returns a store over table.
func New(api API, table string, opts ...Option) (*Store, error) {
	if table == "" {
		return nil, errors.New("new dynamodb store: table name cannot be empty")
	}
	s := &Store{
		api:          api,
		table:        table,
		now:          time.Now,
		tableWait:    DefaultTableWait,
		waitMinDelay: 2 * time.Second,
		waitMaxDelay: 20 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Ping checks that the table is reachable.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.api.DescribeTable(ctx, &sdk.DescribeTableInput{TableName: aws.String(s.table)})
	if err != nil {
		return fmt.Errorf("ping dynamodb: %w", err)
	}
	return nil
}

// Migrate creates the table with on-demand billing when it does not exist
// and returns once the table is ACTIVE.
func (s *Store) Migrate(ctx context.Context) error {
	out, err := s.api.DescribeTable(ctx, &sdk.DescribeTableInput{TableName: aws.String(s.table)})
	if err == nil {
		if out.Table != nil && out.Table.TableStatus == types.TableStatusActive {
			return nil
		}
		return s.waitActive(ctx)
	}

	var nf *types.ResourceNotFoundException
	if !errors.As(err, &nf) {
		return fmt.Errorf("migrate: describe table: %w", err)
	}

	_, err = s.api.CreateTable(ctx, &sdk.CreateTableInput{
		TableName: aws.String(s.table),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(bluelist.IDField), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(bluelist.IDField), KeyType: types.KeyTypeHash},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		return fmt.Errorf("migrate: create table: %w", err)
	}
	return s.waitActive(ctx)
}

func (s *Store) waitActive(ctx context.Context) error {
	waiter := sdk.NewTableExistsWaiter(s.api, func(o *sdk.TableExistsWaiterOptions) {
		o.MinDelay = s.waitMinDelay
		o.MaxDelay = s.waitMaxDelay
	})
	err := waiter.Wait(ctx, &sdk.DescribeTableInput{TableName: aws.String(s.table)}, s.tableWait)
	if err != nil {
		return fmt.Errorf("migrate: wait for table %s: %w", s.table, err)
	}
	return nil
}

// Find scans the table for records of typeName. DynamoDB scans are
// unordered, so matches are sorted by creation time before the limit applies.
func (s *Store) Find(ctx context.Context, typeName string, filter bluelist.Filter, limit int) ([]bluelist.Record, error) {
	if limit < 0 {
		return nil, fmt.Errorf("find: %w: negative limit", bluelist.ErrInvalidInput)
	}

	if _, pinned := filter[bluelist.IDField]; pinned {
		return s.findByID(ctx, typeName, filter)
	}

	var items []item
	var startKey map[string]types.AttributeValue
	for {
		out, err := s.api.Scan(ctx, &sdk.ScanInput{
			TableName:                aws.String(s.table),
			FilterExpression:         aws.String("#t = :type"),
			ExpressionAttributeNames: map[string]string{"#t": "type"},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":type": &types.AttributeValueMemberS{Value: typeName},
			},
			ExclusiveStartKey: startKey,
			ConsistentRead:    aws.Bool(true),
		})
		if err != nil {
			return nil, fmt.Errorf("find: scan: %w", err)
		}

		for _, m := range out.Items {
			it, err := decodeItem(m)
			if err != nil {
				return nil, fmt.Errorf("find: decode: %w", err)
			}
			items = append(items, it)
		}

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt != items[j].CreatedAt {
			return items[i].CreatedAt < items[j].CreatedAt
		}
		return items[i].ID < items[j].ID
	})

	out := []bluelist.Record{}
	for _, it := range items {
		var more bool
		if out, more = internal.Collect(out, it.record(), filter, limit); !more {
			break
		}
	}
	return out, nil
}

func (s *Store) findByID(ctx context.Context, typeName string, filter bluelist.Filter) ([]bluelist.Record, error) {
	id, ok := filter.IDCondition()
	if !ok {
		return []bluelist.Record{}, nil
	}

	rec, err := s.Get(ctx, id)
	if errors.Is(err, bluelist.ErrNotFound) {
		return []bluelist.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}

	if rec.Type != typeName || !filter.Matches(rec) {
		return []bluelist.Record{}, nil
	}
	return []bluelist.Record{rec}, nil
}

func (s *Store) Get(ctx context.Context, id string) (bluelist.Record, error) {
	if id == "" {
		return bluelist.Record{}, bluelist.ErrNotFound
	}

	out, err := s.api.GetItem(ctx, &sdk.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            key(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return bluelist.Record{}, fmt.Errorf("get: %w", err)
	}
	if len(out.Item) == 0 {
		return bluelist.Record{}, bluelist.ErrNotFound
	}

	it, err := decodeItem(out.Item)
	if err != nil {
		return bluelist.Record{}, fmt.Errorf("get: decode: %w", err)
	}
	return it.record(), nil
}

func (s *Store) Insert(ctx context.Context, typeName string, fields map[string]any) (bluelist.Record, error) {
	now := internal.FormatTime(s.now())
	it := item{
		ID:        uuid.NewString(),
		Type:      typeName,
		Fields:    bluelist.StripID(fields),
		CreatedAt: now,
		UpdatedAt: now,
	}

	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return bluelist.Record{}, fmt.Errorf("insert: encode: %w", err)
	}

	_, err = s.api.PutItem(ctx, &sdk.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return bluelist.Record{}, fmt.Errorf("insert: %w", err)
	}

	return it.record(), nil
}

func (s *Store) Update(ctx context.Context, rec bluelist.Record) (bluelist.Record, error) {
	if rec.ID == "" {
		return bluelist.Record{}, fmt.Errorf("update: %w", bluelist.ErrNotFound)
	}

	fields, err := attributevalue.Marshal(bluelist.StripID(rec.Fields))
	if err != nil {
		return bluelist.Record{}, fmt.Errorf("update: encode: %w", err)
	}

	out, err := s.api.UpdateItem(ctx, &sdk.UpdateItemInput{
		TableName:           aws.String(s.table),
		Key:                 key(rec.ID),
		UpdateExpression:    aws.String("SET #f = :fields, updated_at = :now"),
		ConditionExpression: aws.String("attribute_exists(id)"),
		ExpressionAttributeNames: map[string]string{
			"#f": "fields",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":fields": fields,
			":now":    &types.AttributeValueMemberS{Value: internal.FormatTime(s.now())},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return bluelist.Record{}, fmt.Errorf("update %s: %w", rec.ID, bluelist.ErrNotFound)
		}
		return bluelist.Record{}, fmt.Errorf("update: %w", err)
	}

	it, err := decodeItem(out.Attributes)
	if err != nil {
		return bluelist.Record{}, fmt.Errorf("update: decode: %w", err)
	}
	return it.record(), nil
}

func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}

	out, err := s.api.DeleteItem(ctx, &sdk.DeleteItemInput{
		TableName:    aws.String(s.table),
		Key:          key(id),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return false, fmt.Errorf("delete: %w", err)
	}

	return len(out.Attributes) > 0, nil
}

func key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		bluelist.IDField: &types.AttributeValueMemberS{Value: id},
	}
}
