package client

import (
	"context"

	"github.com/google/uuid"

	"gnomeshade/api"
)

func (c *Client) Categories(ctx context.Context) ([]api.Category, error) {
	return get[[]api.Category](ctx, c, api.V1+"/categories", nil)
}

func (c *Client) Category(ctx context.Context, id uuid.UUID) (api.Category, error) {
	return get[api.Category](ctx, c, api.V1+"/categories/"+id.String(), nil)
}

func (c *Client) CreateCategory(ctx context.Context, in api.CategoryCreation) (uuid.UUID, error) {
	return c.create(ctx, api.V1+"/categories", in)
}

func (c *Client) PutCategory(ctx context.Context, id uuid.UUID, in api.CategoryCreation) (bool, error) {
	return c.put(ctx, api.V1+"/categories/"+id.String(), in)
}

func (c *Client) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return c.delete(ctx, api.V1+"/categories/"+id.String())
}

func (c *Client) Products(ctx context.Context) ([]api.Product, error) {
	return get[[]api.Product](ctx, c, api.V1+"/products", nil)
}

func (c *Client) Product(ctx context.Context, id uuid.UUID) (api.Product, error) {
	return get[api.Product](ctx, c, api.V1+"/products/"+id.String(), nil)
}

func (c *Client) CreateProduct(ctx context.Context, in api.ProductCreation) (uuid.UUID, error) {
	return c.create(ctx, api.V1+"/products", in)
}

func (c *Client) PutProduct(ctx context.Context, id uuid.UUID, in api.ProductCreation) (bool, error) {
	return c.put(ctx, api.V1+"/products/"+id.String(), in)
}

func (c *Client) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return c.delete(ctx, api.V1+"/products/"+id.String())
}

// ProductPurchases lists every purchase of the product.
func (c *Client) ProductPurchases(ctx context.Context, id uuid.UUID) ([]api.Purchase, error) {
	return get[[]api.Purchase](ctx, c, api.V1+"/products/"+id.String()+"/purchases", nil)
}

func (c *Client) Units(ctx context.Context) ([]api.Unit, error) {
	return get[[]api.Unit](ctx, c, api.V1+"/units", nil)
}

func (c *Client) Unit(ctx context.Context, id uuid.UUID) (api.Unit, error) {
	return get[api.Unit](ctx, c, api.V1+"/units/"+id.String(), nil)
}

func (c *Client) CreateUnit(ctx context.Context, in api.UnitCreation) (uuid.UUID, error) {
	return c.create(ctx, api.V1+"/units", in)
}

func (c *Client) PutUnit(ctx context.Context, id uuid.UUID, in api.UnitCreation) (bool, error) {
	return c.put(ctx, api.V1+"/units/"+id.String(), in)
}

func (c *Client) DeleteUnit(ctx context.Context, id uuid.UUID) error {
	return c.delete(ctx, api.V1+"/units/"+id.String())
}
