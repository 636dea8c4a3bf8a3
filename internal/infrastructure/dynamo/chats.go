package dynamo

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/ngo-connect-api/internal/domain"
)

// ChatRepo provides typed DynamoDB operations for the chats table.
type ChatRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewChatRepo(client *dynamodb.Client, tableName string) *ChatRepo {
	return &ChatRepo{client: client, tableName: tableName}
}

func (r *ChatRepo) Put(ctx context.Context, c *domain.Chat) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal chat: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *ChatRepo) Get(ctx context.Context, chatID string) (*domain.Chat, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("chat_id", chatID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
	}
	var c domain.Chat
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByParticipant returns every chat where userID sits on either side.
// Two GSI queries, merged; a user is never on both sides of the same chat.
func (r *ChatRepo) ListByParticipant(ctx context.Context, userID string) ([]domain.Chat, error) {
	var chats []domain.Chat
	for _, index := range []struct{ name, key string }{
		{"participant_a_id-index", "participant_a_id"},
		{"participant_b_id-index", "participant_b_id"},
	} {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String(index.name),
			KeyConditionExpression: aws.String(fmt.Sprintf("%s = :uid", index.key)),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":uid": &types.AttributeValueMemberS{Value: userID},
			},
		})
		if err != nil {
			return nil, err
		}
		var page []domain.Chat
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		chats = append(chats, page...)
	}
	return chats, nil
}

func (r *ChatRepo) Update(ctx context.Context, chatID string, updates map[string]interface{}) error {
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("chat_id", chatID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

// UpdateWithAdd applies the SET updates and adds delta to the counter
// attribute in the same request, so concurrent senders never lose a bump.
func (r *ChatRepo) UpdateWithAdd(ctx context.Context, chatID string, updates map[string]interface{}, counter string, delta int) error {
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	ue.Names["#cnt"] = counter
	ue.Values[":delta"] = &types.AttributeValueMemberN{Value: strconv.Itoa(delta)}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("chat_id", chatID),
		UpdateExpression:          aws.String(ue.Expr + " ADD #cnt :delta"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}
