package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/example/marketplace/internal/domain/order"
)

// DynamoOrderStore implements order.Store on DynamoDB.
type DynamoOrderStore struct {
	client    *dynamodb.Client
	tableName string
}

// dynamoOrder represents the DynamoDB item structure. Items are kept as a
// JSON string, same shape as the Postgres JSONB column.
type dynamoOrder struct {
	ID              string  `dynamodbav:"id"`
	UserID          string  `dynamodbav:"user_id"`
	Items           string  `dynamodbav:"items"`
	TotalAmount     float64 `dynamodbav:"total_amount"`
	Status          string  `dynamodbav:"status"`
	ShippingAddress string  `dynamodbav:"shipping_address"`
	Phone           string  `dynamodbav:"phone"`
	Notes           string  `dynamodbav:"notes"`
	CreatedAt       string  `dynamodbav:"created_at"`
	UpdatedAt       string  `dynamodbav:"updated_at"`
	DeliveredAt     string  `dynamodbav:"delivered_at,omitempty"`
}

func NewDynamoOrderStore(client *dynamodb.Client, tableName string) *DynamoOrderStore {
	return &DynamoOrderStore{client: client, tableName: tableName}
}

func (s *DynamoOrderStore) Create(ctx context.Context, o *order.Order) error {
	item, err := marshalOrder(o)
	if err != nil {
		return err
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	return err
}

func (s *DynamoOrderStore) Get(ctx context.Context, id string) (*order.Order, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       orderKey(id),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, order.ErrOrderNotFound
	}
	return unmarshalOrder(out.Item)
}

func (s *DynamoOrderStore) ListByUser(ctx context.Context, userID string) ([]*order.Order, error) {
	return s.scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(s.tableName),
		FilterExpression: aws.String("user_id = :user"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":user": &types.AttributeValueMemberS{Value: userID},
		},
	})
}

func (s *DynamoOrderStore) ListAll(ctx context.Context) ([]*order.Order, error) {
	return s.scan(ctx, &dynamodb.ScanInput{TableName: aws.String(s.tableName)})
}

func (s *DynamoOrderStore) UpdateStatus(ctx context.Context, id string, status order.Status, deliveredAt *time.Time) error {
	update := "SET #status = :status, updated_at = :now"
	values := map[string]types.AttributeValue{
		":status": &types.AttributeValueMemberS{Value: string(status)},
		":now":    &types.AttributeValueMemberS{Value: time.Now().Format(time.RFC3339Nano)},
	}
	if deliveredAt != nil {
		update += ", delivered_at = :delivered"
		values[":delivered"] = &types.AttributeValueMemberS{Value: deliveredAt.Format(time.RFC3339Nano)}
	}

	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.tableName),
		Key:                       orderKey(id),
		UpdateExpression:          aws.String(update),
		ConditionExpression:       aws.String("attribute_exists(id)"),
		ExpressionAttributeNames:  map[string]string{"#status": "status"},
		ExpressionAttributeValues: values,
	})
	var conditionFailed *types.ConditionalCheckFailedException
	if errors.As(err, &conditionFailed) {
		return order.ErrOrderNotFound
	}
	return err
}

func (s *DynamoOrderStore) scan(ctx context.Context, input *dynamodb.ScanInput) ([]*order.Order, error) {
	var orders []*order.Order
	paginator := dynamodb.NewScanPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, item := range page.Items {
			o, err := unmarshalOrder(item)
			if err != nil {
				return nil, err
			}
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func orderKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

func marshalOrder(o *order.Order) (map[string]types.AttributeValue, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order items: %w", err)
	}
	do := dynamoOrder{
		ID:              o.ID,
		UserID:          o.UserID,
		Items:           string(items),
		TotalAmount:     o.TotalAmount,
		Status:          string(o.Status),
		ShippingAddress: o.ShippingAddress,
		Phone:           o.Phone,
		Notes:           o.Notes,
		CreatedAt:       o.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:       o.UpdatedAt.Format(time.RFC3339Nano),
	}
	if o.DeliveredAt != nil {
		do.DeliveredAt = o.DeliveredAt.Format(time.RFC3339Nano)
	}
	return attributevalue.MarshalMap(do)
}

func unmarshalOrder(item map[string]types.AttributeValue) (*order.Order, error) {
	var do dynamoOrder
	if err := attributevalue.UnmarshalMap(item, &do); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order item: %w", err)
	}
	o := &order.Order{
		ID:              do.ID,
		UserID:          do.UserID,
		TotalAmount:     do.TotalAmount,
		Status:          order.Status(do.Status),
		ShippingAddress: do.ShippingAddress,
		Phone:           do.Phone,
		Notes:           do.Notes,
	}
	if err := json.Unmarshal([]byte(do.Items), &o.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order items: %w", err)
	}
	var err error
	if o.CreatedAt, err = time.Parse(time.RFC3339Nano, do.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if o.UpdatedAt, err = time.Parse(time.RFC3339Nano, do.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	if do.DeliveredAt != "" {
		delivered, err := time.Parse(time.RFC3339Nano, do.DeliveredAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse delivered_at: %w", err)
		}
		o.DeliveredAt = &delivered
	}
	return o, nil
}
