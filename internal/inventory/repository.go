package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Gusjafo/Light-Microservices/internal/contracts"
	"github.com/Gusjafo/Light-Microservices/internal/dedup"
)

var ErrNotFound = errors.New("not found")

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// Store is what the OrderCreated consumer depends on.
type Store interface {
	Apply(ctx context.Context, consumerName string, ev contracts.OrderCreated) (ApplyResult, error)
}

// Repository adds the read/seed operations the HTTP API uses.
type Repository interface {
	Store
	Get(ctx context.Context, productID string) (Product, error)
	Upsert(ctx context.Context, p Product) error
}

type PostgresRepository struct {
	pool    DBPool
	markers *dedup.Repository
}

func NewPostgresRepository(pool DBPool, markers *dedup.Repository) *PostgresRepository {
	return &PostgresRepository{pool: pool, markers: markers}
}

func (r *PostgresRepository) Get(ctx context.Context, productID string) (Product, error) {
	var p Product
	row := r.pool.QueryRow(ctx, `SELECT id, name, price, stock FROM products WHERE id=$1`, productID)
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Stock); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, p Product) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO products (id, name, price, stock)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name=EXCLUDED.name, price=EXCLUDED.price, stock=EXCLUDED.stock, updated_at=now()
	`, p.ID, p.Name, p.Price, p.Stock)
	return err
}

// Apply runs the whole delivery state machine in one transaction:
// marker insert, row-locked stock check, decrement. The marker and any
// mutation commit together, so a redelivery after commit always lands on
// the duplicate path.
func (r *PostgresRepository) Apply(ctx context.Context, consumerName string, ev contracts.OrderCreated) (ApplyResult, error) {
	res := ApplyResult{}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return res, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	duplicate, err := r.markers.WithExecutor(tx).Insert(ctx, consumerName, ev.EventID)
	if err != nil {
		return res, err
	}
	if duplicate {
		// The conflicting insert aborted the tx; nothing to commit.
		res.Status = StatusDuplicate
		return res, nil
	}

	var stock int
	err = tx.QueryRow(ctx, `
		SELECT stock
		FROM products
		WHERE id=$1
		FOR UPDATE
	`, ev.ProductID).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			res.Status = StatusProductMissing
			if err := tx.Commit(ctx); err != nil {
				return res, fmt.Errorf("commit marker: %w", err)
			}
			return res, nil
		}
		return res, fmt.Errorf("lock product %s: %w", ev.ProductID, err)
	}

	res.AvailableStock = stock

	if stock < ev.Quantity {
		res.Status = StatusInsufficientStock
		if err := tx.Commit(ctx); err != nil {
			return res, fmt.Errorf("commit marker: %w", err)
		}
		return res, nil
	}

	if _, err := tx.Exec(ctx, `
		UPDATE products
		SET stock = stock - $2, updated_at=now()
		WHERE id=$1
	`, ev.ProductID, ev.Quantity); err != nil {
		return res, fmt.Errorf("decrement product %s: %w", ev.ProductID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return res, fmt.Errorf("commit decrement: %w", err)
	}

	res.Status = StatusDecreased
	res.RemainingStock = stock - ev.Quantity
	return res, nil
}
