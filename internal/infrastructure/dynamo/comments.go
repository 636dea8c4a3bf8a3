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

// CommentRepo provides typed DynamoDB operations for the comments table.
type CommentRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewCommentRepo(client *dynamodb.Client, tableName string) *CommentRepo {
	return &CommentRepo{client: client, tableName: tableName}
}

func (r *CommentRepo) Put(ctx context.Context, c *domain.Comment) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal comment: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ListByPost returns a post's comments oldest first (ULID range key order).
func (r *CommentRepo) ListByPost(ctx context.Context, postID string) ([]domain.Comment, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("post_id-comment_id-index"),
		KeyConditionExpression: aws.String("post_id = :pid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pid": &types.AttributeValueMemberS{Value: postID},
		},
	})
	if err != nil {
		return nil, err
	}
	var comments []domain.Comment
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}
