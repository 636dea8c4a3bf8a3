package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/ngo-connect-api/internal/domain"
)

// PostRepo provides typed DynamoDB operations for the posts table.
// Post ids are ULIDs, so GSI range keys on post_id sort by creation time.
type PostRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewPostRepo(client *dynamodb.Client, tableName string) *PostRepo {
	return &PostRepo{client: client, tableName: tableName}
}

func (r *PostRepo) Put(ctx context.Context, p *domain.Post) error {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal post: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *PostRepo) Get(ctx context.Context, postID string) (*domain.Post, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("post_id", postID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("post %s: %w", postID, domain.ErrNotFound)
	}
	var p domain.Post
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByType returns all posts of one type, newest first.
func (r *PostRepo) ListByType(ctx context.Context, postType string) ([]domain.Post, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("post_type-post_id-index"),
		KeyConditionExpression: aws.String("post_type = :pt"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pt": &types.AttributeValueMemberS{Value: postType},
		},
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, err
	}
	var posts []domain.Post
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// ListByAuthor returns one author's posts of the given type, newest first.
func (r *PostRepo) ListByAuthor(ctx context.Context, authorID, authorModel, postType string) ([]domain.Post, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("author_id-post_id-index"),
		KeyConditionExpression: aws.String("author_id = :aid"),
		FilterExpression:       aws.String("post_type = :pt AND author_model = :am"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":aid": &types.AttributeValueMemberS{Value: authorID},
			":pt":  &types.AttributeValueMemberS{Value: postType},
			":am":  &types.AttributeValueMemberS{Value: authorModel},
		},
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, err
	}
	var posts []domain.Post
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// AddVolunteers adds delta to the registered volunteer counter in a single
// update. When capacity > 0 and delta > 0 the add is conditional on the
// event not being full; a failed condition maps to domain.ErrConflict.
func (r *PostRepo) AddVolunteers(ctx context.Context, postID string, delta, capacity int) error {
	input := &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.tableName),
		Key:              strKey("post_id", postID),
		UpdateExpression: aws.String("SET #ua = :now ADD #rv :delta"),
		ExpressionAttributeNames: map[string]string{
			"#ua": "updated_at",
			"#rv": "registered_volunteers",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now":   &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
			":delta": &types.AttributeValueMemberN{Value: strconv.Itoa(delta)},
		},
	}
	if capacity > 0 && delta > 0 {
		input.ConditionExpression = aws.String("attribute_not_exists(#rv) OR #rv < :cap")
		input.ExpressionAttributeValues[":cap"] = &types.AttributeValueMemberN{Value: strconv.Itoa(capacity)}
	}
	_, err := r.client.UpdateItem(ctx, input)
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("event is full: %w", domain.ErrConflict)
	}
	return err
}

func (r *PostRepo) Update(ctx context.Context, postID string, updates map[string]interface{}) error {
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("post_id", postID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}
