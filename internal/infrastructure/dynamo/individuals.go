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

// IndividualRepo provides typed DynamoDB operations for the individuals table.
type IndividualRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewIndividualRepo(client *dynamodb.Client, tableName string) *IndividualRepo {
	return &IndividualRepo{client: client, tableName: tableName}
}

func (r *IndividualRepo) Put(ctx context.Context, ind *domain.Individual) error {
	item, err := attributevalue.MarshalMap(ind)
	if err != nil {
		return fmt.Errorf("marshal individual: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *IndividualRepo) Get(ctx context.Context, individualID string) (*domain.Individual, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("individual_id", individualID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("individual %s: %w", individualID, domain.ErrNotFound)
	}
	var ind domain.Individual
	if err := attributevalue.UnmarshalMap(out.Item, &ind); err != nil {
		return nil, err
	}
	return &ind, nil
}

// GetByEmail queries the email GSI. Email is unique per account.
func (r *IndividualRepo) GetByEmail(ctx context.Context, email string) (*domain.Individual, error) {
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
		return nil, fmt.Errorf("individual with email %s: %w", email, domain.ErrNotFound)
	}
	var ind domain.Individual
	if err := attributevalue.UnmarshalMap(out.Items[0], &ind); err != nil {
		return nil, err
	}
	return &ind, nil
}

func (r *IndividualRepo) Update(ctx context.Context, individualID string, updates map[string]interface{}) error {
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("individual_id", individualID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}
