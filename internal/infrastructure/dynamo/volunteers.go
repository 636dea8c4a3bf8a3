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

// VolunteerRepo provides typed DynamoDB operations for the volunteers table.
type VolunteerRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewVolunteerRepo(client *dynamodb.Client, tableName string) *VolunteerRepo {
	return &VolunteerRepo{client: client, tableName: tableName}
}

func (r *VolunteerRepo) Put(ctx context.Context, reg *domain.VolunteerRegistration) error {
	item, err := attributevalue.MarshalMap(reg)
	if err != nil {
		return fmt.Errorf("marshal volunteer registration: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ListByEvent returns all registrations for one event post.
func (r *VolunteerRepo) ListByEvent(ctx context.Context, eventID string) ([]domain.VolunteerRegistration, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("event_id-index"),
		KeyConditionExpression: aws.String("event_id = :eid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":eid": &types.AttributeValueMemberS{Value: eventID},
		},
	})
	if err != nil {
		return nil, err
	}
	var regs []domain.VolunteerRegistration
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &regs); err != nil {
		return nil, err
	}
	return regs, nil
}
