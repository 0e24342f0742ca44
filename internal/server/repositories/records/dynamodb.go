package records

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dmitrijs2005/capacitanet/internal/common"
)

// VersionAttr is the numeric attribute holding the record version.
const VersionAttr = "version"

// DynamoAPI is the part of *dynamodb.Client used here.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoRepository maps each Table onto a DynamoDB table whose partition key
// is Table.KeyAttr and whose JSON blob lives in Table.DataAttr.
type DynamoRepository struct {
	client DynamoAPI
}

func NewDynamoRepository(client DynamoAPI) *DynamoRepository {
	return &DynamoRepository{client: client}
}

func (r *DynamoRepository) Get(ctx context.Context, table Table, key string) (*Item, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(table.Name),
		Key:            keyOf(table, key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb get: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, common.ErrorNotFound
	}
	return itemFrom(table, out.Item)
}

func (r *DynamoRepository) Put(ctx context.Context, table Table, item Item, cond Condition) error {
	if cond != IfNotExists {
		return r.Update(ctx, table, item.Key, item.Data)
	}

	_, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(table.Name),
		Item: map[string]types.AttributeValue{
			table.KeyAttr:  &types.AttributeValueMemberS{Value: item.Key},
			table.DataAttr: &types.AttributeValueMemberS{Value: item.Data},
			VersionAttr:    &types.AttributeValueMemberN{Value: "1"},
		},
		ConditionExpression:      aws.String("attribute_not_exists(#k)"),
		ExpressionAttributeNames: map[string]string{"#k": table.KeyAttr},
	})
	return conditional("dynamodb put", err)
}

func (r *DynamoRepository) Update(ctx context.Context, table Table, key string, data string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(table.Name),
		Key:                      keyOf(table, key),
		UpdateExpression:         aws.String("SET #d = :d ADD #v :one"),
		ExpressionAttributeNames: map[string]string{"#d": table.DataAttr, "#v": VersionAttr},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":d":   &types.AttributeValueMemberS{Value: data},
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
	})
	if err != nil {
		return fmt.Errorf("dynamodb update: %w", err)
	}
	return nil
}

func (r *DynamoRepository) UpdateIfVersion(ctx context.Context, table Table, key string, data string, version int64) error {
	in := &dynamodb.UpdateItemInput{
		TableName:                aws.String(table.Name),
		Key:                      keyOf(table, key),
		UpdateExpression:         aws.String("SET #d = :d, #v = :next"),
		ConditionExpression:      aws.String("#v = :expected"),
		ExpressionAttributeNames: map[string]string{"#d": table.DataAttr, "#v": VersionAttr},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":d":        &types.AttributeValueMemberS{Value: data},
			":next":     &types.AttributeValueMemberN{Value: strconv.FormatInt(version+1, 10)},
			":expected": &types.AttributeValueMemberN{Value: strconv.FormatInt(version, 10)},
		},
	}
	if version == 0 {
		in.ConditionExpression = aws.String("attribute_exists(#k) AND attribute_not_exists(#v)")
		in.ExpressionAttributeNames["#k"] = table.KeyAttr
		delete(in.ExpressionAttributeValues, ":expected")
	}

	_, err := r.client.UpdateItem(ctx, in)
	return conditional("dynamodb conditional update", err)
}

// Scan reads the whole table, following LastEvaluatedKey across pages.
func (r *DynamoRepository) Scan(ctx context.Context, table Table) ([]Item, error) {
	var items []Item

	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:      aws.String(table.Name),
		ConsistentRead: aws.Bool(true),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("dynamodb scan: %w", err)
		}
		for _, raw := range page.Items {
			item, err := itemFrom(table, raw)
			if err != nil {
				return nil, err
			}
			items = append(items, *item)
		}
	}

	return items, nil
}

func keyOf(table Table, key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		table.KeyAttr: &types.AttributeValueMemberS{Value: key},
	}
}

func conditional(op string, err error) error {
	if err == nil {
		return nil
	}
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return common.ErrConditionFailed
	}
	return fmt.Errorf("%s: %w", op, err)
}

func itemFrom(table Table, raw map[string]types.AttributeValue) (*Item, error) {
	key, ok := raw[table.KeyAttr].(*types.AttributeValueMemberS)
	if !ok {
		return nil, fmt.Errorf("dynamodb item in %s: missing key attribute %q", table.Name, table.KeyAttr)
	}
	data, ok := raw[table.DataAttr].(*types.AttributeValueMemberS)
	if !ok {
		return nil, fmt.Errorf("dynamodb item %s/%s: missing data attribute %q", table.Name, key.Value, table.DataAttr)
	}

	item := &Item{Key: key.Value, Data: data.Value}
	// items written by older clients may lack a version; treat them as version 0
	if v, ok := raw[VersionAttr].(*types.AttributeValueMemberN); ok {
		n, err := strconv.ParseInt(v.Value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("dynamodb item %s/%s: bad version %q", table.Name, key.Value, v.Value)
		}
		item.Version = n
	}
	return item, nil
}
