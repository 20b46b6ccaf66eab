package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	domainErrors "github.com/shopflow/choreography/internal/domain/errors"
	"github.com/shopflow/choreography/internal/domain/model"
)

const orderColumns = `id, code, buyer_id, user_name, street, city, state, country, zip_code, status, version, created_at, updated_at`

func (r *orderRepository) Create(ctx context.Context, order *model.Order, outbox ...model.OutboxMessage) error {
	const insertOrder = `INSERT INTO orders (` + orderColumns + `)
                         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	const insertItem = `INSERT INTO order_items (order_id, product_id, product_name, picture_url, unit_price, quantity)
                        VALUES ($1, $2, $3, $4, $5, $6)`

	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		a := order.Address
		if _, err := tx.Exec(ctx, insertOrder,
			order.ID, order.Code, order.BuyerID, order.UserName,
			a.Street, a.City, a.State, a.Country, a.ZipCode,
			string(order.Status), order.Version, order.CreatedAt, order.UpdatedAt,
		); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for _, item := range order.Items {
			if _, err := tx.Exec(ctx, insertItem,
				order.ID, item.ProductID, item.ProductName, item.PictureURL, item.UnitPrice.String(), item.Quantity,
			); err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
		}

		return insertOutboxTx(ctx, tx, outbox...)
	})
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`

	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}

	items, err := r.loadItems(ctx, []string{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]
	return order, nil
}

func (r *orderRepository) Replace(ctx context.Context, order *model.Order) error {
	const query = `UPDATE orders SET status=$1, updated_at=$2, version=version+1
                   WHERE id=$3 AND version=$4`

	tag, err := r.storage.pool.Exec(ctx, query, string(order.Status), order.UpdatedAt, order.ID, order.Version)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrConflict
	}
	order.Version++
	return nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userName string) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE user_name=$1 ORDER BY created_at DESC`

	rows, err := r.storage.pool.Query(ctx, query, userName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if len(result) == 0 {
		return result, nil
	}

	ids := make([]string, len(result))
	for i := range result {
		ids[i] = result[i].ID
	}
	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range result {
		result[i].Items = items[result[i].ID]
	}
	return result, nil
}

func (r *orderRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM orders WHERE id=$1`
	tag, err := r.storage.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *orderRepository) loadItems(ctx context.Context, orderIDs []string) (map[string][]model.OrderItem, error) {
	const query = `SELECT order_id, product_id, product_name, picture_url, unit_price::text, quantity
                   FROM order_items WHERE order_id = ANY($1) ORDER BY order_id, product_id`

	rows, err := r.storage.pool.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[string][]model.OrderItem, len(orderIDs))
	for rows.Next() {
		var (
			orderID string
			price   string
			item    model.OrderItem
		)
		if err := rows.Scan(&orderID, &item.ProductID, &item.ProductName, &item.PictureURL, &price, &item.Quantity); err != nil {
			return nil, err
		}
		if item.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse unit price: %w", err)
		}
		items[orderID] = append(items[orderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o      model.Order
		status string
	)
	if err := row.Scan(
		&o.ID, &o.Code, &o.BuyerID, &o.UserName,
		&o.Address.Street, &o.Address.City, &o.Address.State, &o.Address.Country, &o.Address.ZipCode,
		&status, &o.Version, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	parsed, err := model.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}
	o.Status = parsed
	return &o, nil
}
