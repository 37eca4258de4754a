package storage

import (
	"context"
	"strconv"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/pkg/errors"
)

const (
	// KeyAttribute is the partition key of the counter table.
	KeyAttribute = "Id"
	// CountAttribute holds the counter value.
	CountAttribute = "count"

	// IncrementExpression initializes a missing count to :start before adding :inc.
	IncrementExpression = "SET #c = if_not_exists(#c, :start) + :inc"
)

// DynamoDBProvider resolves the DynamoDB client on first use.
type DynamoDBProvider interface {
	DynamoDB() (dynamodbiface.DynamoDBAPI, error)
}

// StaticDynamoDB wraps an existing client as a DynamoDBProvider.
func StaticDynamoDB(api dynamodbiface.DynamoDBAPI) DynamoDBProvider {
	return staticDynamoDB{api: api}
}

type staticDynamoDB struct {
	api dynamodbiface.DynamoDBAPI
}

func (s staticDynamoDB) DynamoDB() (dynamodbiface.DynamoDBAPI, error) {
	return s.api, nil
}

// DynamoDB implementation of Interface.
type DynamoDB struct {
	table    string
	provider DynamoDBProvider
}

func NewDynamoDB(table string, p DynamoDBProvider) *DynamoDB {
	return &DynamoDB{
		table:    table,
		provider: p,
	}
}

func (d *DynamoDB) key(id string) map[string]*dynamodb.AttributeValue {
	return map[string]*dynamodb.AttributeValue{
		KeyAttribute: {S: aws.String(id)},
	}
}

func (d *DynamoDB) Get(ctx context.Context, id string) (*Record, error) {
	api, err := d.provider.DynamoDB()
	if err != nil {
		return nil, err
	}
	out, err := api.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.table),
		Key:       d.key(id),
	})
	if err != nil {
		return nil, wrapAWSError(err, "get item %q from %q", id, d.table)
	}
	if out.Item == nil {
		return nil, ErrNoRecordExists
	}
	r := new(Record)
	if err := dynamodbattribute.UnmarshalMap(out.Item, r); err != nil {
		return nil, errors.Wrapf(err, "malformed record %q", id)
	}
	return r, nil
}

func (d *DynamoDB) Put(ctx context.Context, r *Record) error {
	api, err := d.provider.DynamoDB()
	if err != nil {
		return err
	}
	item, err := dynamodbattribute.MarshalMap(r)
	if err != nil {
		return errors.Wrap(err, "failed to marshal record")
	}
	_, err = api.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.table),
		Item:      item,
	})
	if err != nil {
		return wrapAWSError(err, "put item %q into %q", r.ID, d.table)
	}
	return nil
}

// Increment issues a single UpdateItem so that DynamoDB applies the
// initialize-and-add atomically.
func (d *DynamoDB) Increment(ctx context.Context, id string, delta int64) (int64, error) {
	api, err := d.provider.DynamoDB()
	if err != nil {
		return 0, err
	}
	out, err := api.UpdateItemWithContext(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(d.table),
		Key:              d.key(id),
		UpdateExpression: aws.String(IncrementExpression),
		ExpressionAttributeNames: map[string]*string{
			"#c": aws.String(CountAttribute),
		},
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":inc":   {N: aws.String(strconv.FormatInt(delta, 10))},
			":start": {N: aws.String("0")},
		},
		ReturnValues: aws.String(dynamodb.ReturnValueUpdatedNew),
	})
	if err != nil {
		return 0, wrapAWSError(err, "update item %q in %q", id, d.table)
	}
	if out.Attributes == nil {
		return 0, nil
	}
	var updated struct {
		Count int64 `dynamodbav:"count"`
	}
	if err := dynamodbattribute.UnmarshalMap(out.Attributes, &updated); err != nil {
		return 0, errors.Wrapf(err, "malformed update result for %q", id)
	}
	return updated.Count, nil
}

func wrapAWSError(err error, format string, args ...interface{}) error {
	if aerr, ok := err.(awserr.Error); ok {
		switch aerr.Code() {
		case dynamodb.ErrCodeProvisionedThroughputExceededException:
			return errors.Wrapf(err, "throttled: "+format, args...)
		case dynamodb.ErrCodeResourceNotFoundException:
			return errors.Wrapf(err, "table not found: "+format, args...)
		default:
			return errors.Wrapf(err, "failed to "+format, args...)
		}
	}
	return errors.Wrapf(err, "failed to "+format, args...)
}
