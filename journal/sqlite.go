package journal

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/rustyeddy/lotsizer/market"
)

const orderColumns = `order_id, strategy, symbol, side, size, open_price, close_price, open_time, close_time, realized_pl, reason`

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create schema")
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordOrder(r OrderRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO orders (`+orderColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Strategy, r.Symbol, r.Side.String(), r.Size,
		r.OpenPrice, r.ClosePrice, r.OpenTime.UTC(), r.CloseTime.UTC(),
		r.RealizedPL, r.Reason,
	)
	return errors.Wrapf(err, "record order %s", r.ID)
}

// GetOrder returns a single order by ID.
func (j *SQLite) GetOrder(ctx context.Context, orderID string) (OrderRecord, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE order_id = ?`, orderID)

	rec, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return OrderRecord{}, errors.Wrapf(ErrNotFound, "order %q", orderID)
	}
	return rec, err
}

// ListOrders returns every order of strategy, oldest first.
func (j *SQLite) ListOrders(ctx context.Context, strategy string) ([]OrderRecord, error) {
	return j.query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE strategy = ?
		ORDER BY close_time ASC, rowid ASC`, strategy)
}

// ListAllOrders returns every order in the journal, oldest first.
func (j *SQLite) ListAllOrders(ctx context.Context) ([]OrderRecord, error) {
	return j.query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		ORDER BY close_time ASC, rowid ASC`)
}

// OrdersForStrategy implements market.TradeHistorySource.
func (j *SQLite) OrdersForStrategy(ctx context.Context, strategy string) ([]market.Order, error) {
	recs, err := j.ListOrders(ctx, strategy)
	if err != nil {
		return nil, err
	}
	return ordersOf(recs), nil
}

// ListOrdersClosedBetween returns orders whose close_time is within [start, end).
func (j *SQLite) ListOrdersClosedBetween(ctx context.Context, start, end time.Time) ([]OrderRecord, error) {
	return j.query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE close_time >= ? AND close_time < ?
		ORDER BY close_time ASC, rowid ASC`, start.UTC(), end.UTC())
}

func (j *SQLite) query(ctx context.Context, q string, args ...any) ([]OrderRecord, error) {
	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query orders")
	}
	defer rows.Close()

	var out []OrderRecord
	for rows.Next() {
		rec, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(s scanner) (OrderRecord, error) {
	var (
		rec  OrderRecord
		side string
	)
	err := s.Scan(
		&rec.ID,
		&rec.Strategy,
		&rec.Symbol,
		&side,
		&rec.Size,
		&rec.OpenPrice,
		&rec.ClosePrice,
		&rec.OpenTime,
		&rec.CloseTime,
		&rec.RealizedPL,
		&rec.Reason,
	)
	if err != nil {
		return OrderRecord{}, err
	}
	rec.Side, err = market.ParseSide(side)
	return rec, err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
