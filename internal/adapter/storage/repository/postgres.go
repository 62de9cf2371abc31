package repository

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/microshop/orders-service/internal/adapter/storage"
	"github.com/microshop/orders-service/internal/core/domain"
)

type Repository struct {
	db *storage.DB
}

func NewRepository(db *storage.DB) (*Repository, error) {
	return &Repository{db: db}, nil
}

var orderColumns = []string{
	"id", "total_amount", "total_items", "status",
	"paid", "paid_at", "stripe_charge_id", "created_at",
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	order := domain.Order{}
	err := row.Scan(
		&order.ID,
		&order.TotalAmount,
		&order.TotalItems,
		&order.Status,
		&order.Paid,
		&order.PaidAt,
		&order.ChargeID,
		&order.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDataNotFound
		}
		return nil, err
	}
	return &order, nil
}

// CreateOrder inserts the order row and all item rows in one transaction.
func (or *Repository) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	order.ID = uuid.NewString()
	order.CreatedAt = time.Now()
	order.ChargeID = ""

	err := pgx.BeginFunc(ctx, or.db, func(tx pgx.Tx) error {
		orderSt := or.db.QueryBuilder.
			Insert("orders").
			Columns("id", "total_amount", "total_items", "status", "created_at").
			Values(order.ID, order.TotalAmount, order.TotalItems, order.Status, order.CreatedAt)

		sql, args, err := orderSt.ToSql()
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, sql, args...)
		if err != nil {
			return err
		}

		itemSt := or.db.QueryBuilder.
			Insert("order_items").
			Columns("order_id", "product_id", "quantity", "price")
		for _, item := range order.Items {
			itemSt = itemSt.Values(order.ID, item.ProductID, item.Quantity, item.Price)
		}

		sql, args, err = itemSt.ToSql()
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, sql, args...)
		return err
	})

	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, domain.ErrConflictingData
		}
		return nil, err
	}

	return order, nil
}

func (or *Repository) ReadOrder(ctx context.Context, id string) (*domain.Order, error) {
	statement := or.db.QueryBuilder.
		Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": id})

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	order, err := scanOrder(or.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, err
	}

	order.Items, err = or.readOrderItems(ctx, id)
	if err != nil {
		return nil, err
	}

	return order, nil
}

func (or *Repository) readOrderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	statement := or.db.QueryBuilder.
		Select("product_id", "quantity", "price").
		From("order_items").
		Where(sq.Eq{"order_id": orderID}).
		OrderBy("id")

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := or.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		item := domain.OrderItem{}
		err := rows.Scan(&item.ProductID, &item.Quantity, &item.Price)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// ListOrders returns one page of orders plus the total row count for the
// filter. Items are not loaded for listings.
func (or *Repository) ListOrders(ctx context.Context, status *domain.OrderStatus, page, limit int) ([]*domain.Order, int64, error) {
	filter := sq.Eq{}
	if status != nil {
		filter["status"] = *status
	}

	countSt := or.db.QueryBuilder.
		Select("count(*)").
		From("orders").
		Where(filter)

	sql, args, err := countSt.ToSql()
	if err != nil {
		return nil, 0, err
	}

	var total int64
	err = or.db.QueryRow(ctx, sql, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	statement := or.db.QueryBuilder.
		Select(orderColumns...).
		From("orders").
		Where(filter).
		OrderBy("created_at").
		Limit(uint64(limit)).
		Offset(uint64((page - 1) * limit))

	sql, args, err = statement.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := or.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list := make([]*domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, order)
	}

	return list, total, rows.Err()
}

func (or *Repository) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	statement := or.db.QueryBuilder.
		Update("orders").
		Set("status", status).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING id, total_amount, total_items, status, paid, paid_at, stripe_charge_id, created_at")

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	return scanOrder(or.db.QueryRow(ctx, sql, args...))
}

// ApplyPaymentSuccess marks the order paid, stores the charge reference and
// creates the receipt, all in one transaction. Applying it to an already paid
// order returns current state without touching the receipt, so at-least-once
// event delivery is safe.
func (or *Repository) ApplyPaymentSuccess(ctx context.Context, notice *domain.PaymentNotice) (*domain.Order, error) {
	var order *domain.Order

	err := pgx.BeginFunc(ctx, or.db, func(tx pgx.Tx) error {
		selectSt := or.db.QueryBuilder.
			Select(orderColumns...).
			From("orders").
			Where(sq.Eq{"id": notice.OrderID}).
			Suffix("FOR UPDATE")

		sql, args, err := selectSt.ToSql()
		if err != nil {
			return err
		}

		order, err = scanOrder(tx.QueryRow(ctx, sql, args...))
		if err != nil {
			return err
		}

		if order.Paid {
			return nil
		}

		paidAt := time.Now()
		updateSt := or.db.QueryBuilder.
			Update("orders").
			Set("status", domain.OrderStatusPaid).
			Set("paid", true).
			Set("paid_at", paidAt).
			Set("stripe_charge_id", notice.ChargeID).
			Where(sq.Eq{"id": notice.OrderID})

		sql, args, err = updateSt.ToSql()
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, sql, args...)
		if err != nil {
			return err
		}

		receiptSt := or.db.QueryBuilder.
			Insert("order_receipts").
			Columns("order_id", "receipt_url").
			Values(notice.OrderID, notice.ReceiptURL).
			Suffix("ON CONFLICT (order_id) DO NOTHING")

		sql, args, err = receiptSt.ToSql()
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, sql, args...)
		if err != nil {
			return err
		}

		order.Status = domain.OrderStatusPaid
		order.Paid = true
		order.PaidAt = &paidAt
		order.ChargeID = notice.ChargeID
		order.Receipt = &domain.Receipt{
			OrderID:    notice.OrderID,
			ReceiptURL: notice.ReceiptURL,
			CreatedAt:  paidAt,
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return order, nil
}
