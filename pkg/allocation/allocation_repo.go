package allocation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

var ErrAllocationNotFound = errors.New("budget allocation not found")

type AllocationRepo interface {
	Store(ctx context.Context, alloc BudgetAllocation) (int, error)
	Get(ctx context.Context, id int) (BudgetAllocation, error)
	GetAllByClient(ctx context.Context, clientID int) ([]BudgetAllocation, error)
	// FindActive returns the client's allocations whose date range overlaps
	// the inclusive [from, to] range.
	FindActive(ctx context.Context, clientID int, from, to time.Time) ([]BudgetAllocation, error)
	Update(ctx context.Context, alloc BudgetAllocation) (bool, error)
	Delete(ctx context.Context, id int) (bool, error)
}

type AllocationRepoImpl struct {
	db *sql.DB
}

func NewAllocationRepo(db *sql.DB) *AllocationRepoImpl {
	return &AllocationRepoImpl{db: db}
}

const allocationColumns = `id, client_id, budget_type_id, allocated_amount, used_amount,
				start_date, end_date, weekday_rate, holiday_rate, kilometer_rate, version`

func (r AllocationRepoImpl) Store(ctx context.Context, alloc BudgetAllocation) (int, error) {
	query := `INSERT INTO budget_allocation (
					client_id,
					budget_type_id,
					allocated_amount,
					used_amount,
					start_date,
					end_date,
					weekday_rate,
					holiday_rate,
					kilometer_rate
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`

	var id int
	err := r.db.QueryRowContext(ctx, query,
		alloc.ClientID,
		alloc.BudgetTypeID,
		alloc.AllocatedAmount,
		alloc.UsedAmount,
		alloc.StartDate.Format("2006-01-02"),
		alloc.EndDate.Format("2006-01-02"),
		alloc.WeekdayRate,
		alloc.HolidayRate,
		alloc.KilometerRate,
	).Scan(&id)
	if err != nil {
		err := fmt.Errorf("could not store allocation: %w", err)
		log.Error(err)
		return 0, err
	}
	return id, nil
}

func (r AllocationRepoImpl) Get(ctx context.Context, id int) (BudgetAllocation, error) {
	query := fmt.Sprintf(`SELECT %s FROM budget_allocation WHERE id = $1`, allocationColumns)
	alloc, err := scanAllocation(r.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return BudgetAllocation{}, ErrAllocationNotFound
		}
		err := fmt.Errorf("could not get allocation %d: %w", id, err)
		log.Error(err)
		return BudgetAllocation{}, err
	}
	return alloc, nil
}

func (r AllocationRepoImpl) GetAllByClient(ctx context.Context, clientID int) ([]BudgetAllocation, error) {
	query := fmt.Sprintf(`SELECT %s FROM budget_allocation WHERE client_id = $1 ORDER BY start_date, id`, allocationColumns)
	return r.queryAllocations(ctx, query, clientID)
}

func (r AllocationRepoImpl) FindActive(ctx context.Context, clientID int, from, to time.Time) ([]BudgetAllocation, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM budget_allocation
				WHERE client_id = $1 AND start_date <= $3 AND end_date >= $2
				ORDER BY start_date, id`,
		allocationColumns)
	return r.queryAllocations(ctx, query, clientID, from.Format("2006-01-02"), to.Format("2006-01-02"))
}

func (r AllocationRepoImpl) queryAllocations(ctx context.Context, query string, args ...any) ([]BudgetAllocation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query allocations: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var allocations []BudgetAllocation
	for rows.Next() {
		alloc, err := scanAllocation(rows.Scan)
		if err != nil {
			err := fmt.Errorf("could not scan allocation: %w", err)
			log.Error(err)
			return nil, err
		}
		allocations = append(allocations, alloc)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return allocations, nil
}

// Update changes the allocation's definition (range, amount, overrides).
// UsedAmount and Version are deliberately not touched here: balance
// mutations belong to the expense ledger.
func (r AllocationRepoImpl) Update(ctx context.Context, alloc BudgetAllocation) (bool, error) {
	query := `UPDATE budget_allocation SET
				budget_type_id = $1,
				allocated_amount = $2,
				start_date = $3,
				end_date = $4,
				weekday_rate = $5,
				holiday_rate = $6,
				kilometer_rate = $7
			WHERE id = $8`
	result, err := r.db.ExecContext(ctx, query,
		alloc.BudgetTypeID,
		alloc.AllocatedAmount,
		alloc.StartDate.Format("2006-01-02"),
		alloc.EndDate.Format("2006-01-02"),
		alloc.WeekdayRate,
		alloc.HolidayRate,
		alloc.KilometerRate,
		alloc.ID,
	)
	if err != nil {
		err := fmt.Errorf("could not update allocation: %w", err)
		log.Error(err)
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		err := fmt.Errorf("could not get rows affected: %w", err)
		log.Error(err)
		return false, err
	}
	return rowsAffected == 1, nil
}

func (r AllocationRepoImpl) Delete(ctx context.Context, id int) (bool, error) {
	// expenses reference allocations with ON DELETE RESTRICT, so deleting
	// an allocation with recorded expenses fails at the schema level
	result, err := r.db.ExecContext(ctx, "DELETE FROM budget_allocation WHERE id = $1", id)
	if err != nil {
		err := fmt.Errorf("could not delete allocation: %w", err)
		log.Error(err)
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		err := fmt.Errorf("could not get rows affected: %w", err)
		log.Error(err)
		return false, err
	}
	return rowsAffected == 1, nil
}

func scanAllocation(scan func(dest ...any) error) (BudgetAllocation, error) {
	var alloc BudgetAllocation
	err := scan(
		&alloc.ID,
		&alloc.ClientID,
		&alloc.BudgetTypeID,
		&alloc.AllocatedAmount,
		&alloc.UsedAmount,
		&alloc.StartDate,
		&alloc.EndDate,
		&alloc.WeekdayRate,
		&alloc.HolidayRate,
		&alloc.KilometerRate,
		&alloc.Version,
	)
	return alloc, err
}
