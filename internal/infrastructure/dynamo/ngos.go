package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/ngo-connect-api/internal/domain"
)

// NGORepo provides typed DynamoDB operations for the ngos table.
type NGORepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewNGORepo(client *dynamodb.Client, tableName string) *NGORepo {
	return &NGORepo{client: client, tableName: tableName}
}

func (r *NGORepo) Put(ctx context.Context, n *domain.NGO) error {
	item, err := attributevalue.MarshalMap(n)
	if err != nil {
		return fmt.Errorf("marshal ngo: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *NGORepo) Get(ctx context.Context, ngoID string) (*domain.NGO, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("ngo_id", ngoID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("ngo %s: %w", ngoID, domain.ErrNotFound)
	}
	var n domain.NGO
	if err := attributevalue.UnmarshalMap(out.Item, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NGORepo) GetByEmail(ctx context.Context, email string) (*domain.NGO, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("email-index"),
		KeyConditionExpression: aws.String("email = :email"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":email": &types.AttributeValueMemberS{Value: email},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("ngo with email %s: %w", email, domain.ErrNotFound)
	}
	var n domain.NGO
	if err := attributevalue.UnmarshalMap(out.Items[0], &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NGORepo) Update(ctx context.Context, ngoID string, updates map[string]interface{}) error {
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("ngo_id", ngoID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}
