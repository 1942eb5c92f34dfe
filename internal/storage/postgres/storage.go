package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/Zaqui712/B-FO/internal/domain/errors"
	"github.com/Zaqui712/B-FO/internal/domain/model"
	"github.com/Zaqui712/B-FO/internal/domain/repository"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"

	defaultTxTimeout = 10 * time.Second
)

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool      pgxPool
	logger    *slog.Logger
	txTimeout time.Duration
}

type orderRepository struct {
	storage *Storage
}

// orderWriter executes statements on a single transaction.
type orderWriter struct {
	tx pgx.Tx
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, txTimeout time.Duration, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if txTimeout <= 0 {
		txTimeout = defaultTxTimeout
	}
	storage := &Storage{pool: pool, logger: logger, txTimeout: txTimeout}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Orders returns the order repository.
func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS order_statuses (
            id BIGINT PRIMARY KEY,
            name TEXT UNIQUE NOT NULL
        )`,
		`INSERT INTO order_statuses (id, name)
            VALUES (1, 'pending'), (2, 'approved'), (3, 'rejected')
            ON CONFLICT (id) DO NOTHING`,
		`CREATE TABLE IF NOT EXISTS orders (
            id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
            external_key TEXT UNIQUE,
            status_id BIGINT NOT NULL REFERENCES order_statuses(id),
            supplier_id BIGINT NOT NULL,
            complete BOOLEAN,
            admin_approved BOOLEAN,
            ordered_at DATE NOT NULL DEFAULT CURRENT_DATE,
            delivered_at DATE,
            quantity_shipped INTEGER,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS order_lines (
            order_id BIGINT NOT NULL REFERENCES orders(id),
            item_id BIGINT NOT NULL,
            quantity INTEGER,
            PRIMARY KEY (order_id, item_id)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status_supplier ON orders(status_id, supplier_id, id)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_incomplete ON orders(ordered_at) WHERE complete IS NOT TRUE`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// WithinTransaction executes function inside a read-committed transaction
// bounded by the storage transaction timeout.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	if s.txTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.txTimeout)
		defer cancel()
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && s.logger != nil {
				s.logger.Warn("rollback failed", slog.String("error", rbErr.Error()))
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// ErrNotConnected is returned by HealthCheck on a storage without a pool.
var ErrNotConnected = errors.New("storage not connected")

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	if s.pool == nil {
		return ErrNotConnected
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// --- OrderRepository implementation ---

const orderColumns = `id, external_key, status_id, supplier_id, complete, admin_approved, ordered_at, delivered_at, quantity_shipped`

func (r *orderRepository) WithinTx(ctx context.Context, fn func(repository.OrderWriter) error) error {
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		return fn(&orderWriter{tx: tx})
	})
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}

	lines, err := r.listLines(ctx, `SELECT order_id, item_id, quantity FROM order_lines WHERE order_id=$1 ORDER BY item_id`, id)
	if err != nil {
		return nil, err
	}
	order.Lines = lines[id]
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY ordered_at DESC, id DESC`
	orders, err := r.listOrders(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	lines, err := r.listLines(ctx, `SELECT order_id, item_id, quantity FROM order_lines ORDER BY order_id, item_id`)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Lines = lines[orders[i].ID]
	}
	return orders, nil
}

func (r *orderRepository) ListIncomplete(ctx context.Context, after repository.IncompleteCursor, limit int) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
                   WHERE complete IS NOT TRUE AND (ordered_at, id) > ($1::date, $2)
                   ORDER BY ordered_at, id
                   LIMIT $3`
	return r.listOrders(ctx, query, after.OrderedAt, after.ID, limit)
}

func (r *orderRepository) listOrders(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.storage.pool.Query(ctx, query, args...)
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
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) listLines(ctx context.Context, query string, args ...any) (map[int64][]model.OrderLine, error) {
	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64][]model.OrderLine)
	for rows.Next() {
		var l model.OrderLine
		if err := rows.Scan(&l.OrderID, &l.ItemID, &l.Quantity); err != nil {
			return nil, err
		}
		result[l.OrderID] = append(result[l.OrderID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// --- OrderWriter implementation ---

func (w *orderWriter) FindMatch(ctx context.Context, criteria repository.MatchCriteria) (*model.Order, int, error) {
	if criteria.Empty() {
		return nil, 0, nil
	}

	query, args := matchQuery(criteria)
	var matches int
	order, err := scanOrder(w.tx.QueryRow(ctx, query, args...), &matches)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, nil
		}
		return nil, 0, err
	}
	return &order, matches, nil
}

func (w *orderWriter) InsertOrder(ctx context.Context, order model.Order, explicitID bool) (int64, error) {
	args := []any{
		nullString(order.ExternalKey),
		order.StatusID,
		order.SupplierID,
		order.Complete,
		order.AdminApproved,
		order.OrderedAt,
		order.DeliveredAt,
		order.QuantityShipped,
	}
	query := `INSERT INTO orders (external_key, status_id, supplier_id, complete, admin_approved, ordered_at, delivered_at, quantity_shipped)
                   VALUES ($1, $2, $3, $4, $5, COALESCE($6, CURRENT_DATE), $7, $8)
                   RETURNING id`
	if explicitID {
		query = `INSERT INTO orders (external_key, status_id, supplier_id, complete, admin_approved, ordered_at, delivered_at, quantity_shipped, id)
                   VALUES ($1, $2, $3, $4, $5, COALESCE($6, CURRENT_DATE), $7, $8, $9)
                   RETURNING id`
		args = append(args, order.ID)
	}

	var id int64
	if err := w.tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, classify(err)
	}
	return id, nil
}

func (w *orderWriter) InsertLine(ctx context.Context, line model.OrderLine) error {
	const query = `INSERT INTO order_lines (order_id, item_id, quantity) VALUES ($1, $2, $3)`
	if _, err := w.tx.Exec(ctx, query, line.OrderID, line.ItemID, line.Quantity); err != nil {
		return classify(err)
	}
	return nil
}

func (w *orderWriter) DeleteLines(ctx context.Context, orderID int64) error {
	_, err := w.tx.Exec(ctx, `DELETE FROM order_lines WHERE order_id=$1`, orderID)
	return err
}

func (w *orderWriter) UpdateOrder(ctx context.Context, orderID int64, order model.Order) error {
	const query = `UPDATE orders SET status_id=$1, complete=COALESCE($2, complete),
                   delivered_at=COALESCE($3, delivered_at), updated_at=NOW()
                   WHERE id=$4`
	tag, err := w.tx.Exec(ctx, query, order.StatusID, order.Complete, order.DeliveredAt, orderID)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (w *orderWriter) UpdateDelivery(ctx context.Context, update model.DeliveryUpdate) (*model.Order, error) {
	query := `UPDATE orders SET complete=$1, delivered_at=$2, updated_at=NOW()
                   WHERE id=$3
                   RETURNING ` + orderColumns
	order, err := scanOrder(w.tx.QueryRow(ctx, query, update.Complete, update.DeliveredAt, update.OrderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (w *orderWriter) UpdateApproval(ctx context.Context, orderID int64, approved bool) error {
	const query = `UPDATE orders SET admin_approved=$1, updated_at=NOW() WHERE id=$2`
	tag, err := w.tx.Exec(ctx, query, approved, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

// matchQuery selects the lowest matching id along with the match count.
func matchQuery(c repository.MatchCriteria) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf("%s=$%d", column, len(args)))
	}
	if c.ID != nil {
		add("id", *c.ID)
	}
	if c.ExternalKey != nil {
		add("external_key", *c.ExternalKey)
	}
	if c.StatusID != nil {
		add("status_id", *c.StatusID)
	}
	if c.SupplierID != nil {
		add("supplier_id", *c.SupplierID)
	}

	query := `SELECT ` + orderColumns + `, COUNT(*) OVER () FROM orders WHERE ` +
		strings.Join(conds, " AND ") + ` ORDER BY id LIMIT 1`
	return query, args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner, extra ...any) (model.Order, error) {
	var (
		o   model.Order
		key *string
	)
	dest := append([]any{
		&o.ID, &key, &o.StatusID, &o.SupplierID, &o.Complete, &o.AdminApproved,
		&o.OrderedAt, &o.DeliveredAt, &o.QuantityShipped,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return model.Order{}, err
	}
	if key != nil {
		o.ExternalKey = *key
	}
	return o, nil
}

// classify maps constraint violations onto domain errors.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		if pgErr.TableName == "order_lines" {
			return fmt.Errorf("%w: item listed twice", domainErrors.ErrInvalidPayload)
		}
		return &domainErrors.ConflictError{}
	case codeForeignKeyViolation:
		return &domainErrors.ValidationError{Field: pgErr.ConstraintName, Err: domainErrors.ErrInvalidRef}
	}
	return err
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
