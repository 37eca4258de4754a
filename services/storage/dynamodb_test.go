package storage_test

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/nesq/resumecount/services/storage"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type fakeDynamoDB struct {
	dynamodbiface.DynamoDBAPI

	getOut    *dynamodb.GetItemOutput
	updateOut *dynamodb.UpdateItemOutput
	err       error

	gets    []*dynamodb.GetItemInput
	puts    []*dynamodb.PutItemInput
	updates []*dynamodb.UpdateItemInput
}

func (f *fakeDynamoDB) GetItemWithContext(_ aws.Context, in *dynamodb.GetItemInput, _ ...request.Option) (*dynamodb.GetItemOutput, error) {
	f.gets = append(f.gets, in)
	if f.err != nil {
		return nil, f.err
	}
	return f.getOut, nil
}

func (f *fakeDynamoDB) PutItemWithContext(_ aws.Context, in *dynamodb.PutItemInput, _ ...request.Option) (*dynamodb.PutItemOutput, error) {
	f.puts = append(f.puts, in)
	if f.err != nil {
		return nil, f.err
	}
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamoDB) UpdateItemWithContext(_ aws.Context, in *dynamodb.UpdateItemInput, _ ...request.Option) (*dynamodb.UpdateItemOutput, error) {
	f.updates = append(f.updates, in)
	if f.err != nil {
		return nil, f.err
	}
	return f.updateOut, nil
}

func TestDynamoDB_Increment(t *testing.T) {
	api := &fakeDynamoDB{
		updateOut: &dynamodb.UpdateItemOutput{
			Attributes: map[string]*dynamodb.AttributeValue{
				"count": {N: aws.String("123")},
			},
		},
	}
	s := storage.NewDynamoDB("MockVisitorCounterDB", storage.StaticDynamoDB(api))

	count, err := s.Increment(context.Background(), "visitor_count", 1)
	require.NoError(t, err)
	require.Equal(t, int64(123), count)

	exp := &dynamodb.UpdateItemInput{
		TableName: aws.String("MockVisitorCounterDB"),
		Key: map[string]*dynamodb.AttributeValue{
			"Id": {S: aws.String("visitor_count")},
		},
		UpdateExpression:         aws.String("SET #c = if_not_exists(#c, :start) + :inc"),
		ExpressionAttributeNames: map[string]*string{"#c": aws.String("count")},
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":inc":   {N: aws.String("1")},
			":start": {N: aws.String("0")},
		},
		ReturnValues: aws.String("UPDATED_NEW"),
	}
	require.Len(t, api.updates, 1)
	require.Equal(t, exp, api.updates[0])
	require.Empty(t, api.gets)
	require.Empty(t, api.puts)
}

func TestDynamoDB_IncrementWithoutAttributes(t *testing.T) {
	api := &fakeDynamoDB{updateOut: &dynamodb.UpdateItemOutput{}}
	s := storage.NewDynamoDB("VisitorCounterDB", storage.StaticDynamoDB(api))

	count, err := s.Increment(context.Background(), "visitor_count", 1)
	require.NoError(t, err)
	require.Equal(t, int64(0), count)
}

func TestDynamoDB_Get(t *testing.T) {
	testCases := map[string]struct {
		out    *dynamodb.GetItemOutput
		exp    *storage.Record
		expErr error
	}{
		"existing": {
			out: &dynamodb.GetItemOutput{Item: map[string]*dynamodb.AttributeValue{
				"Id":    {S: aws.String("visitor_count")},
				"count": {N: aws.String("50")},
			}},
			exp: &storage.Record{ID: "visitor_count", Count: 50},
		},
		"missing count": {
			out: &dynamodb.GetItemOutput{Item: map[string]*dynamodb.AttributeValue{
				"Id": {S: aws.String("visitor_count")},
			}},
			exp: &storage.Record{ID: "visitor_count"},
		},
		"missing item": {
			out:    &dynamodb.GetItemOutput{},
			expErr: storage.ErrNoRecordExists,
		},
	}
	for name, tc := range testCases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			api := &fakeDynamoDB{getOut: tc.out}
			s := storage.NewDynamoDB("VisitorCounterDB", storage.StaticDynamoDB(api))

			got, err := s.Get(context.Background(), "visitor_count")
			if tc.expErr != nil {
				require.Equal(t, tc.expErr, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.exp, got)

			require.Len(t, api.gets, 1)
			require.Equal(t, "visitor_count", aws.StringValue(api.gets[0].Key["Id"].S))
			require.Equal(t, "VisitorCounterDB", aws.StringValue(api.gets[0].TableName))
		})
	}
}

func TestDynamoDB_Put(t *testing.T) {
	api := &fakeDynamoDB{}
	s := storage.NewDynamoDB("VisitorCounterDB", storage.StaticDynamoDB(api))

	require.NoError(t, s.Put(context.Background(), &storage.Record{ID: "visitor_count"}))
	require.Len(t, api.puts, 1)
	exp := map[string]*dynamodb.AttributeValue{
		"Id":    {S: aws.String("visitor_count")},
		"count": {N: aws.String("0")},
	}
	require.Equal(t, exp, api.puts[0].Item)
}

func TestDynamoDB_Errors(t *testing.T) {
	throttled := awserr.New(dynamodb.ErrCodeProvisionedThroughputExceededException, "slow down", nil)
	api := &fakeDynamoDB{err: throttled}
	s := storage.NewDynamoDB("VisitorCounterDB", storage.StaticDynamoDB(api))

	_, err := s.Get(context.Background(), "visitor_count")
	require.Error(t, err)
	require.Equal(t, throttled, errors.Cause(err))
	require.Contains(t, err.Error(), "throttled")

	_, err = s.Increment(context.Background(), "visitor_count", 1)
	require.Error(t, err)
	require.Equal(t, throttled, errors.Cause(err))
}
