package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/example/marketplace/internal/domain/product"
)

// DynamoProductStore implements product.Store on DynamoDB. The conditional
// stock decrement uses a ConditionExpression, so the storage layer enforces
// the same never-below-zero guarantee as the Postgres store.
type DynamoProductStore struct {
	client    *dynamodb.Client
	tableName string
}

// dynamoProduct represents the DynamoDB item structure. The tier table is
// kept as a JSON string, same shape as the Postgres JSONB column.
type dynamoProduct struct {
	ID          string  `dynamodbav:"id"`
	SellerID    string  `dynamodbav:"seller_id"`
	Name        string  `dynamodbav:"name"`
	Description string  `dynamodbav:"description"`
	ImageURL    string  `dynamodbav:"image_url"`
	Stock       int     `dynamodbav:"stock"`
	PriceTiers  string  `dynamodbav:"price_tiers"`
	IsActive    bool    `dynamodbav:"is_active"`
	CreatedAt   string  `dynamodbav:"created_at"`
	UpdatedAt   string  `dynamodbav:"updated_at"`
}

func NewDynamoProductStore(client *dynamodb.Client, tableName string) *DynamoProductStore {
	return &DynamoProductStore{client: client, tableName: tableName}
}

func (s *DynamoProductStore) Create(ctx context.Context, p *product.Product) error {
	item, err := marshalProduct(p)
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

func (s *DynamoProductStore) Get(ctx context.Context, id string) (*product.Product, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       productKey(id),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, product.ErrProductNotFound
	}
	return unmarshalProduct(out.Item)
}

func (s *DynamoProductStore) List(ctx context.Context, activeOnly bool) ([]*product.Product, error) {
	input := &dynamodb.ScanInput{TableName: aws.String(s.tableName)}
	if activeOnly {
		input.FilterExpression = aws.String("is_active = :active")
		input.ExpressionAttributeValues = map[string]types.AttributeValue{
			":active": &types.AttributeValueMemberBOOL{Value: true},
		}
	}
	return s.scan(ctx, input)
}

func (s *DynamoProductStore) ListBySeller(ctx context.Context, sellerID string) ([]*product.Product, error) {
	return s.scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(s.tableName),
		FilterExpression: aws.String("seller_id = :seller"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":seller": &types.AttributeValueMemberS{Value: sellerID},
		},
	})
}

func (s *DynamoProductStore) Update(ctx context.Context, p *product.Product) error {
	item, err := marshalProduct(p)
	if err != nil {
		return err
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	var conditionFailed *types.ConditionalCheckFailedException
	if errors.As(err, &conditionFailed) {
		return product.ErrProductNotFound
	}
	return err
}

func (s *DynamoProductStore) DecrementStock(ctx context.Context, id string, quantity int) error {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.tableName),
		Key:                 productKey(id),
		UpdateExpression:    aws.String("SET stock = stock - :quantity, updated_at = :now"),
		ConditionExpression: aws.String("attribute_exists(id) AND stock >= :quantity"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":quantity": &types.AttributeValueMemberN{Value: strconv.Itoa(quantity)},
			":now":      &types.AttributeValueMemberS{Value: time.Now().Format(time.RFC3339Nano)},
		},
	})
	var conditionFailed *types.ConditionalCheckFailedException
	if errors.As(err, &conditionFailed) {
		if _, getErr := s.Get(ctx, id); errors.Is(getErr, product.ErrProductNotFound) {
			return product.ErrProductNotFound
		}
		return product.ErrInsufficientStock
	}
	return err
}

func (s *DynamoProductStore) IncrementStock(ctx context.Context, id string, quantity int) error {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.tableName),
		Key:                 productKey(id),
		UpdateExpression:    aws.String("SET stock = stock + :quantity, updated_at = :now"),
		ConditionExpression: aws.String("attribute_exists(id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":quantity": &types.AttributeValueMemberN{Value: strconv.Itoa(quantity)},
			":now":      &types.AttributeValueMemberS{Value: time.Now().Format(time.RFC3339Nano)},
		},
	})
	var conditionFailed *types.ConditionalCheckFailedException
	if errors.As(err, &conditionFailed) {
		return product.ErrProductNotFound
	}
	return err
}

func (s *DynamoProductStore) scan(ctx context.Context, input *dynamodb.ScanInput) ([]*product.Product, error) {
	var products []*product.Product
	paginator := dynamodb.NewScanPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, item := range page.Items {
			p, err := unmarshalProduct(item)
			if err != nil {
				return nil, err
			}
			products = append(products, p)
		}
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products, nil
}

func productKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

func marshalProduct(p *product.Product) (map[string]types.AttributeValue, error) {
	tiers, err := json.Marshal(p.PriceTiers)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal price tiers: %w", err)
	}
	return attributevalue.MarshalMap(dynamoProduct{
		ID:          p.ID,
		SellerID:    p.SellerID,
		Name:        p.Name,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Stock:       p.Stock,
		PriceTiers:  string(tiers),
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339Nano),
	})
}

func unmarshalProduct(item map[string]types.AttributeValue) (*product.Product, error) {
	var dp dynamoProduct
	if err := attributevalue.UnmarshalMap(item, &dp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product item: %w", err)
	}
	p := &product.Product{
		ID:          dp.ID,
		SellerID:    dp.SellerID,
		Name:        dp.Name,
		Description: dp.Description,
		ImageURL:    dp.ImageURL,
		Stock:       dp.Stock,
		IsActive:    dp.IsActive,
	}
	if err := json.Unmarshal([]byte(dp.PriceTiers), &p.PriceTiers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal price tiers: %w", err)
	}
	var err error
	if p.CreatedAt, err = time.Parse(time.RFC3339Nano, dp.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if p.UpdatedAt, err = time.Parse(time.RFC3339Nano, dp.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return p, nil
}
