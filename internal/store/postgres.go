package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	errx "github.com/cs-support-assistant/server/internal/core/error"
)

type Config struct {
	URL         string `envconfig:"DATABASE_URL" required:"true"`
	MaxConns    int32  `envconfig:"DATABASE_MAX_CONNS" default:"4"`
	DialTimeout int    `envconfig:"DATABASE_DIAL_TIMEOUT" default:"5"`
}

// New opens a connection pool and verifies connectivity.
func (c *Config) New(ctx context.Context) (*Postgres, error) {
	poolCfg, err := pgxpool.ParseConfig(c.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolCfg.MaxConns = c.MaxConns
	poolCfg.ConnConfig.ConnectTimeout = time.Duration(c.DialTimeout) * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Postgres implements SupportStore over a pgx pool. Every call acquires a
// pooled connection for its own duration and releases it before returning;
// no transaction spans multiple tool calls.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ SupportStore = (*Postgres)(nil)

func (p *Postgres) Close() {
	p.pool.Close()
}

func (p *Postgres) OrderByID(ctx context.Context, orderID int) (*Order, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, errx.WrapStore(err)
	}
	defer conn.Release()

	var o Order
	err = conn.QueryRow(ctx, `
		SELECT order_id, customer_id, status, order_date, status_updated_at,
		       tracking_no, carrier, eta_date, total_amount, currency
		FROM orders
		WHERE order_id = $1
		LIMIT 1`, orderID,
	).Scan(&o.OrderID, &o.CustomerID, &o.Status, &o.OrderDate, &o.StatusUpdatedAt,
		&o.TrackingNo, &o.Carrier, &o.ETADate, &o.TotalAmount, &o.Currency)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errx.WrapStore(err)
	}
	return &o, nil
}

func (p *Postgres) OrderForCustomer(ctx context.Context, orderID, customerID int) (*Order, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, errx.WrapStore(err)
	}
	defer conn.Release()

	var o Order
	err = conn.QueryRow(ctx, `
		SELECT order_id, customer_id, status, order_date, status_updated_at,
		       tracking_no, carrier, eta_date, total_amount, currency
		FROM orders
		WHERE order_id = $1 AND customer_id = $2
		LIMIT 1`, orderID, customerID,
	).Scan(&o.OrderID, &o.CustomerID, &o.Status, &o.OrderDate, &o.StatusUpdatedAt,
		&o.TrackingNo, &o.Carrier, &o.ETADate, &o.TotalAmount, &o.Currency)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errx.WrapStore(err)
	}
	return &o, nil
}

func (p *Postgres) OrderByTrackingNo(ctx context.Context, trackingNo string) (*Order, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, errx.WrapStore(err)
	}
	defer conn.Release()

	var o Order
	err = conn.QueryRow(ctx, `
		SELECT order_id, customer_id, status, order_date, status_updated_at,
		       tracking_no, carrier, eta_date, total_amount, currency
		FROM orders
		WHERE tracking_no = $1
		LIMIT 1`, trackingNo,
	).Scan(&o.OrderID, &o.CustomerID, &o.Status, &o.OrderDate, &o.StatusUpdatedAt,
		&o.TrackingNo, &o.Carrier, &o.ETADate, &o.TotalAmount, &o.Currency)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errx.WrapStore(err)
	}
	return &o, nil
}

func (p *Postgres) LatestShipmentEvent(ctx context.Context, trackingNo string) (*ShipmentEvent, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, errx.WrapStore(err)
	}
	defer conn.Release()

	var e ShipmentEvent
	err = conn.QueryRow(ctx, `
		SELECT tracking_no, status, location, event_time, details
		FROM shipment_events
		WHERE tracking_no = $1
		ORDER BY event_time DESC
		LIMIT 1`, trackingNo,
	).Scan(&e.TrackingNo, &e.Status, &e.Location, &e.EventTime, &e.Details)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errx.WrapStore(err)
	}
	return &e, nil
}

func (p *Postgres) ShippingMethods(ctx context.Context, region string) ([]ShippingMethod, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, errx.WrapStore(err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
		SELECT name, region, carrier, cost, est_days_min, est_days_max
		FROM shipping_methods
		WHERE region IN ($1, 'World')
		ORDER BY cost ASC, est_days_min ASC`, region)
	if err != nil {
		return nil, errx.WrapStore(err)
	}
	defer rows.Close()

	var methods []ShippingMethod
	for rows.Next() {
		var m ShippingMethod
		if err := rows.Scan(&m.Name, &m.Region, &m.Carrier, &m.Cost, &m.EstDaysMin, &m.EstDaysMax); err != nil {
			return nil, errx.WrapStore(err)
		}
		methods = append(methods, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errx.WrapStore(err)
	}
	return methods, nil
}

func (p *Postgres) CheapestShippingMethod(ctx context.Context, region string, maxDays *int) (*ShippingMethod, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, errx.WrapStore(err)
	}
	defer conn.Release()

	sql := `
		SELECT name, region, carrier, cost, est_days_min, est_days_max
		FROM shipping_methods
		WHERE region IN ($1, 'World')`
	args := []any{region}
	if maxDays != nil {
		sql += ` AND est_days_max <= $2`
		args = append(args, *maxDays)
	}
	sql += ` ORDER BY cost ASC, est_days_min ASC LIMIT 1`

	var m ShippingMethod
	err = conn.QueryRow(ctx, sql, args...).
		Scan(&m.Name, &m.Region, &m.Carrier, &m.Cost, &m.EstDaysMin, &m.EstDaysMax)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errx.WrapStore(err)
	}
	return &m, nil
}

func (p *Postgres) ShippingMethodByName(ctx context.Context, region, name string) (*ShippingMethod, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, errx.WrapStore(err)
	}
	defer conn.Release()

	var m ShippingMethod
	err = conn.QueryRow(ctx, `
		SELECT name, region, carrier, cost, est_days_min, est_days_max
		FROM shipping_methods
		WHERE region IN ($1, 'World') AND name = $2
		LIMIT 1`, region, name,
	).Scan(&m.Name, &m.Region, &m.Carrier, &m.Cost, &m.EstDaysMin, &m.EstDaysMax)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errx.WrapStore(err)
	}
	return &m, nil
}

func (p *Postgres) LastPayment(ctx context.Context, orderID int) (*Payment, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, errx.WrapStore(err)
	}
	defer conn.Release()

	var pay Payment
	err = conn.QueryRow(ctx, `
		SELECT order_id, method, amount, currency, status, last_attempt,
		       failure_code, failure_reason
		FROM payments
		WHERE order_id = $1
		ORDER BY last_attempt DESC NULLS LAST
		LIMIT 1`, orderID,
	).Scan(&pay.OrderID, &pay.Method, &pay.Amount, &pay.Currency, &pay.Status,
		&pay.LastAttempt, &pay.FailureCode, &pay.FailureReason)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errx.WrapStore(err)
	}
	return &pay, nil
}

func (p *Postgres) LastReturn(ctx context.Context, orderID int) (*Return, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, errx.WrapStore(err)
	}
	defer conn.Release()

	var r Return
	err = conn.QueryRow(ctx, `
		SELECT r.return_id, r.order_id, r.request_date, r.status, r.approved,
		       r.refund_amount, r.currency, p.title AS product_title
		FROM returns r
		LEFT JOIN products p ON p.product_id = r.product_id
		WHERE r.order_id = $1
		ORDER BY r.request_date DESC
		LIMIT 1`, orderID,
	).Scan(&r.ReturnID, &r.OrderID, &r.RequestDate, &r.Status, &r.Approved,
		&r.RefundAmount, &r.Currency, &r.ProductTitle)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errx.WrapStore(err)
	}
	return &r, nil
}

func (p *Postgres) DeliveredAt(ctx context.Context, orderID int) (*time.Time, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, errx.WrapStore(err)
	}
	defer conn.Release()

	var at time.Time
	err = conn.QueryRow(ctx, `
		SELECT e.event_time
		FROM shipment_events e
		JOIN orders o ON o.tracking_no = e.tracking_no
		WHERE o.order_id = $1 AND e.status ILIKE 'Delivered%'
		ORDER BY e.event_time DESC
		LIMIT 1`, orderID,
	).Scan(&at)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errx.WrapStore(err)
	}
	return &at, nil
}

func (p *Postgres) OrdersByCustomer(ctx context.Context, customerID int) ([]Order, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, errx.WrapStore(err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
		SELECT order_id, customer_id, status, order_date, status_updated_at,
		       tracking_no, carrier, eta_date, total_amount, currency
		FROM orders
		WHERE customer_id = $1
		ORDER BY order_date DESC`, customerID)
	if err != nil {
		return nil, errx.WrapStore(err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.OrderID, &o.CustomerID, &o.Status, &o.OrderDate, &o.StatusUpdatedAt,
			&o.TrackingNo, &o.Carrier, &o.ETADate, &o.TotalAmount, &o.Currency); err != nil {
			return nil, errx.WrapStore(err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, errx.WrapStore(err)
	}
	return orders, nil
}

func (p *Postgres) PaymentsByCustomer(ctx context.Context, customerID int) ([]Payment, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, errx.WrapStore(err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
		SELECT p.order_id, p.method, p.amount, p.currency, p.status,
		       p.last_attempt, p.failure_code, p.failure_reason
		FROM payments p
		JOIN orders o ON o.order_id = p.order_id
		WHERE o.customer_id = $1
		ORDER BY p.last_attempt DESC`, customerID)
	if err != nil {
		return nil, errx.WrapStore(err)
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		var pay Payment
		if err := rows.Scan(&pay.OrderID, &pay.Method, &pay.Amount, &pay.Currency, &pay.Status,
			&pay.LastAttempt, &pay.FailureCode, &pay.FailureReason); err != nil {
			return nil, errx.WrapStore(err)
		}
		payments = append(payments, pay)
	}
	if err := rows.Err(); err != nil {
		return nil, errx.WrapStore(err)
	}
	return payments, nil
}

func (p *Postgres) ReturnsByCustomer(ctx context.Context, customerID int) ([]Return, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, errx.WrapStore(err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
		SELECT r.return_id, r.order_id, r.request_date, r.status, r.approved,
		       r.refund_amount, r.currency, p.title AS product_title
		FROM returns r
		JOIN orders o ON o.order_id = r.order_id
		LEFT JOIN products p ON p.product_id = r.product_id
		WHERE o.customer_id = $1
		ORDER BY r.request_date DESC`, customerID)
	if err != nil {
		return nil, errx.WrapStore(err)
	}
	defer rows.Close()

	var returns []Return
	for rows.Next() {
		var r Return
		if err := rows.Scan(&r.ReturnID, &r.OrderID, &r.RequestDate, &r.Status, &r.Approved,
			&r.RefundAmount, &r.Currency, &r.ProductTitle); err != nil {
			return nil, errx.WrapStore(err)
		}
		returns = append(returns, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errx.WrapStore(err)
	}
	return returns, nil
}
