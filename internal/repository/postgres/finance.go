package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lbarone/chronos/internal/models"
	"github.com/lbarone/chronos/internal/repository"
)

type financeRepository struct {
	db *sql.DB
}

// NewFinanceRepository creates a new finance transaction repository.
func NewFinanceRepository(db *sql.DB) repository.FinanceRepository {
	return &financeRepository{db: db}
}

func (r *financeRepository) Create(ctx context.Context, tx *models.FinanceTransaction) (*models.FinanceTransaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	tx.CreatedAt = time.Now()

	query := `
		INSERT INTO finance_transactions (id, tx_type, amount, category, description, tx_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		tx.ID, tx.Type, tx.Amount, tx.Category, nullable(tx.Description), tx.Date, tx.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return tx, nil
}

func (r *financeRepository) List(ctx context.Context, filters repository.FinanceFilters) ([]models.FinanceTransaction, error) {
	query := `
		SELECT id, tx_type, amount, category, description, tx_date, created_at
		FROM finance_transactions
		WHERE 1=1`
	args := []any{}
	argIdx := 1

	if filters.From != nil {
		query += fmt.Sprintf(" AND tx_date >= $%d", argIdx)
		args = append(args, *filters.From)
		argIdx++
	}
	if filters.To != nil {
		query += fmt.Sprintf(" AND tx_date <= $%d", argIdx)
		args = append(args, *filters.To)
		argIdx++
	}
	if filters.Type != nil {
		query += fmt.Sprintf(" AND tx_type = $%d", argIdx)
		args = append(args, *filters.Type)
	}

	query += " ORDER BY tx_date DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.FinanceTransaction
	for rows.Next() {
		var (
			tx   models.FinanceTransaction
			desc sql.NullString
		)
		if err := rows.Scan(&tx.ID, &tx.Type, &tx.Amount, &tx.Category, &desc, &tx.Date, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		tx.Description = desc.String
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (r *financeRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM finance_transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return requireOneRow(result, "transaction", id)
}
