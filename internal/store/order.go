package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/shoplite/apiserver/types"
	"github.com/shopspring/decimal"
)

// OrderLine is a single requested line of a new order: a product
// reference and a quantity. Pricing is resolved inside the transaction.
type OrderLine struct {
	ProductID int
	Qty       int
}

// OrderRepository handles persistence for orders and their items.
type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create places an order as a single serializable transaction.
//
// Every requested line is resolved against the products table inside the
// transaction: the product must exist and be active. The product's price
// is snapshotted into the order item, subtotal = price x qty, and the
// order total is the exact decimal sum of subtotals. If any line is
// invalid the whole transaction rolls back and an *OrderRejectedError
// listing every invalid line is returned; no order or item rows persist.
func (r *OrderRepository) Create(ctx context.Context, order types.Order, lines []OrderLine) (types.Order, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return types.Order{}, err
	}
	defer tx.Rollback()

	const productQuery = `SELECT id, name, price, status FROM products WHERE id = $1`

	var issues []ProductIssue
	items := make([]types.OrderItem, 0, len(lines))
	total := decimal.Zero

	for i, line := range lines {
		var (
			productID   int
			productName string
			price       decimal.Decimal
			status      string
		)
		err := tx.QueryRowContext(ctx, productQuery, line.ProductID).Scan(
			&productID,
			&productName,
			&price,
			&status,
		)
		if errors.Is(err, sql.ErrNoRows) {
			issues = append(issues, ProductIssue{
				Index:     i,
				ProductID: line.ProductID,
				Reason:    ProductIssueMissing,
			})
			continue
		}
		if err != nil {
			return types.Order{}, err
		}

		if status != types.ProductStatusActive {
			issues = append(issues, ProductIssue{
				Index:       i,
				ProductID:   productID,
				ProductName: productName,
				Reason:      ProductIssueInactive,
			})
			continue
		}

		subtotal := price.Mul(decimal.NewFromInt(int64(line.Qty)))
		total = total.Add(subtotal)
		items = append(items, types.OrderItem{
			ProductID: productID,
			Qty:       line.Qty,
			Price:     price,
			Subtotal:  subtotal,
		})
	}

	if len(issues) > 0 {
		return types.Order{}, &OrderRejectedError{Issues: issues}
	}

	order.Status = types.OrderStatusPending
	order.TotalPrice = total
	order.CreatedAt = time.Now()

	const orderQuery = `
		INSERT INTO orders (customer_name, customer_email, status, total_price, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	if err := tx.QueryRowContext(
		ctx,
		orderQuery,
		order.CustomerName,
		order.CustomerEmail,
		order.Status,
		order.TotalPrice,
		order.CreatedAt,
	).Scan(&order.ID); err != nil {
		return types.Order{}, err
	}

	const itemQuery = `
		INSERT INTO order_items (order_id, product_id, qty, price, subtotal)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	for i := range items {
		items[i].OrderID = order.ID
		if err := tx.QueryRowContext(
			ctx,
			itemQuery,
			order.ID,
			items[i].ProductID,
			items[i].Qty,
			items[i].Price,
			items[i].Subtotal,
		).Scan(&items[i].ID); err != nil {
			return types.Order{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return types.Order{}, err
	}

	order.Items = items
	return order, nil
}

// List returns all orders newest first, each with its items.
func (r *OrderRepository) List(ctx context.Context) ([]types.Order, error) {
	const query = `
		SELECT id, customer_name, customer_email, status, total_price, created_at
		FROM orders
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]types.Order, 0)
	ids := make([]int64, 0)
	for rows.Next() {
		var order types.Order
		if err := rows.Scan(
			&order.ID,
			&order.CustomerName,
			&order.CustomerEmail,
			&order.Status,
			&order.TotalPrice,
			&order.CreatedAt,
		); err != nil {
			return nil, err
		}
		order.Items = []types.OrderItem{}
		orders = append(orders, order)
		ids = append(ids, int64(order.ID))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	itemsByOrder, err := r.itemsForOrders(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if items, ok := itemsByOrder[orders[i].ID]; ok {
			orders[i].Items = items
		}
	}
	return orders, nil
}

func (r *OrderRepository) Get(ctx context.Context, id int) (types.Order, error) {
	const query = `
		SELECT id, customer_name, customer_email, status, total_price, created_at
		FROM orders
		WHERE id = $1`
	var order types.Order
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.CustomerName,
		&order.CustomerEmail,
		&order.Status,
		&order.TotalPrice,
		&order.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Order{}, ErrNotFound
		}
		return types.Order{}, err
	}

	itemsByOrder, err := r.itemsForOrders(ctx, []int64{int64(order.ID)})
	if err != nil {
		return types.Order{}, err
	}
	order.Items = itemsByOrder[order.ID]
	if order.Items == nil {
		order.Items = []types.OrderItem{}
	}
	return order, nil
}

func (r *OrderRepository) itemsForOrders(ctx context.Context, orderIDs []int64) (map[int][]types.OrderItem, error) {
	const query = `
		SELECT id, order_id, product_id, qty, price, subtotal
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	itemsByOrder := make(map[int][]types.OrderItem)
	for rows.Next() {
		var item types.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Qty,
			&item.Price,
			&item.Subtotal,
		); err != nil {
			return nil, err
		}
		itemsByOrder[item.OrderID] = append(itemsByOrder[item.OrderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return itemsByOrder, nil
}
