package expense

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/curaflow/curaflow/pkg/allocation"
)

type ExpenseRepo interface {
	// Debit inserts the expense and, when it targets an allocation,
	// increments the allocation's used amount under an optimistic version
	// check in the same transaction. Returns ErrConcurrentModification
	// when the allocation changed underneath; the caller may retry.
	// The returned allocation snapshot reflects the state after the debit
	// and is nil for direct expenses.
	Debit(ctx context.Context, exp BudgetExpense) (BudgetExpense, *allocation.BudgetAllocation, error)
	// Reverse voids the expense and re-credits the allocation atomically.
	Reverse(ctx context.Context, uid string) (BudgetExpense, error)
	Get(ctx context.Context, uid string) (BudgetExpense, error)
	GetByAllocation(ctx context.Context, allocationID int) ([]BudgetExpense, error)
	GetByCompensation(ctx context.Context, compensationUID string) ([]BudgetExpense, error)
}

const expenseColumns = "id, uid, allocation_id, amount, description, expense_date, time_log_id, compensation_uid, voided, created_at"

type ExpenseRepoImpl struct {
	db *sql.DB
}

func NewExpenseRepo(db *sql.DB) *ExpenseRepoImpl {
	return &ExpenseRepoImpl{db: db}
}

func (r ExpenseRepoImpl) Debit(ctx context.Context, exp BudgetExpense) (BudgetExpense, *allocation.BudgetAllocation, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		err := fmt.Errorf("could not begin debit transaction: %w", err)
		log.Error(err)
		return BudgetExpense{}, nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var alloc *allocation.BudgetAllocation
	if exp.AllocationID != nil {
		snapshot := allocation.BudgetAllocation{ID: *exp.AllocationID}
		err := tx.QueryRowContext(ctx,
			"SELECT client_id, budget_type_id, allocated_amount, used_amount, version FROM budget_allocation WHERE id = $1",
			snapshot.ID,
		).Scan(&snapshot.ClientID, &snapshot.BudgetTypeID, &snapshot.AllocatedAmount, &snapshot.UsedAmount, &snapshot.Version)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return BudgetExpense{}, nil, allocation.ErrAllocationNotFound
			}
			err := fmt.Errorf("could not read allocation %d for debit: %w", snapshot.ID, err)
			log.Error(err)
			return BudgetExpense{}, nil, err
		}

		newUsed := snapshot.UsedAmount.Add(exp.Amount)
		result, err := tx.ExecContext(ctx,
			"UPDATE budget_allocation SET used_amount = $1, version = version + 1 WHERE id = $2 AND version = $3",
			newUsed, snapshot.ID, snapshot.Version,
		)
		if err != nil {
			err := fmt.Errorf("could not debit allocation %d: %w", snapshot.ID, err)
			log.Error(err)
			return BudgetExpense{}, nil, err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			err := fmt.Errorf("could not get rows affected: %w", err)
			log.Error(err)
			return BudgetExpense{}, nil, err
		}
		if affected == 0 {
			return BudgetExpense{}, nil, ErrConcurrentModification
		}
		snapshot.UsedAmount = newUsed
		snapshot.Version++
		alloc = &snapshot
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO budget_expense (uid, allocation_id, amount, description, expense_date, time_log_id, compensation_uid)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		exp.UID, exp.AllocationID, exp.Amount, exp.Description, exp.ExpenseDate, exp.TimeLogID, exp.CompensationUID,
	).Scan(&exp.ID, &exp.CreatedAt)
	if err != nil {
		err := fmt.Errorf("could not store expense: %w", err)
		log.Error(err)
		return BudgetExpense{}, nil, err
	}

	if err := tx.Commit(); err != nil {
		err := fmt.Errorf("could not commit debit: %w", err)
		log.Error(err)
		return BudgetExpense{}, nil, err
	}
	return exp, alloc, nil
}

func (r ExpenseRepoImpl) Reverse(ctx context.Context, uid string) (BudgetExpense, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		err := fmt.Errorf("could not begin reversal transaction: %w", err)
		log.Error(err)
		return BudgetExpense{}, err
	}
	defer func() { _ = tx.Rollback() }()

	exp, err := scanExpense(tx.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM budget_expense WHERE uid = $1", uid).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return BudgetExpense{}, ErrExpenseNotFound
		}
		err := fmt.Errorf("could not read expense %s for reversal: %w", uid, err)
		log.Error(err)
		return BudgetExpense{}, err
	}
	if exp.Voided {
		return BudgetExpense{}, ErrExpenseVoided
	}

	if _, err := tx.ExecContext(ctx, "UPDATE budget_expense SET voided = TRUE WHERE uid = $1", uid); err != nil {
		err := fmt.Errorf("could not void expense %s: %w", uid, err)
		log.Error(err)
		return BudgetExpense{}, err
	}

	if exp.AllocationID != nil {
		_, err := tx.ExecContext(ctx,
			"UPDATE budget_allocation SET used_amount = used_amount - $1, version = version + 1 WHERE id = $2",
			exp.Amount, *exp.AllocationID,
		)
		if err != nil {
			err := fmt.Errorf("could not re-credit allocation %d: %w", *exp.AllocationID, err)
			log.Error(err)
			return BudgetExpense{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		err := fmt.Errorf("could not commit reversal: %w", err)
		log.Error(err)
		return BudgetExpense{}, err
	}
	exp.Voided = true
	return exp, nil
}

func (r ExpenseRepoImpl) Get(ctx context.Context, uid string) (BudgetExpense, error) {
	exp, err := scanExpense(r.db.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM budget_expense WHERE uid = $1", uid).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return BudgetExpense{}, ErrExpenseNotFound
		}
		err := fmt.Errorf("could not get expense %s: %w", uid, err)
		log.Error(err)
		return BudgetExpense{}, err
	}
	return exp, nil
}

func (r ExpenseRepoImpl) GetByAllocation(ctx context.Context, allocationID int) ([]BudgetExpense, error) {
	return r.queryExpenses(ctx,
		"SELECT "+expenseColumns+" FROM budget_expense WHERE allocation_id = $1 ORDER BY expense_date, id", allocationID)
}

func (r ExpenseRepoImpl) GetByCompensation(ctx context.Context, compensationUID string) ([]BudgetExpense, error) {
	return r.queryExpenses(ctx,
		"SELECT "+expenseColumns+" FROM budget_expense WHERE compensation_uid = $1 ORDER BY expense_date, id", compensationUID)
}

func (r ExpenseRepoImpl) queryExpenses(ctx context.Context, query string, args ...any) ([]BudgetExpense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query expenses: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	expenses := make([]BudgetExpense, 0)
	for rows.Next() {
		exp, err := scanExpense(rows.Scan)
		if err != nil {
			err := fmt.Errorf("could not scan expense: %w", err)
			log.Error(err)
			return nil, err
		}
		expenses = append(expenses, exp)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return expenses, nil
}

func scanExpense(scan func(dest ...any) error) (BudgetExpense, error) {
	var exp BudgetExpense
	err := scan(&exp.ID, &exp.UID, &exp.AllocationID, &exp.Amount, &exp.Description,
		&exp.ExpenseDate, &exp.TimeLogID, &exp.CompensationUID, &exp.Voided, &exp.CreatedAt)
	return exp, err
}
