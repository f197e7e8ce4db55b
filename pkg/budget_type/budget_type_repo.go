package budget_type

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

type BudgetTypeRepo interface {
	Store(ctx context.Context, budgetType BudgetType) (int, error)
	GetAll(ctx context.Context) ([]BudgetType, error)
	Get(ctx context.Context, id int) (BudgetType, error)
	Update(ctx context.Context, budgetType BudgetType) (bool, error)
	Delete(ctx context.Context, id int) (bool, error)
}

var ErrBudgetTypeNotFound = fmt.Errorf("budget type not found")

type BudgetTypeRepoImpl struct {
	db *sql.DB
}

func NewBudgetTypeRepo(db *sql.DB) *BudgetTypeRepoImpl {
	return &BudgetTypeRepoImpl{db: db}
}

func (r BudgetTypeRepoImpl) Store(ctx context.Context, budgetType BudgetType) (int, error) {
	query := `INSERT INTO budget_type (name, code, description, default_weekday_rate, default_holiday_rate, default_kilometer_rate)
				VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	var id int
	err := r.db.QueryRowContext(ctx, query,
		budgetType.Name,
		budgetType.Code,
		budgetType.Description,
		budgetType.DefaultWeekdayRate,
		budgetType.DefaultHolidayRate,
		budgetType.DefaultKilometerRate,
	).Scan(&id)
	if err != nil {
		err := fmt.Errorf("could not store budget type: %w", err)
		log.Error(err)
		return 0, err
	}
	return id, nil
}

func (r BudgetTypeRepoImpl) GetAll(ctx context.Context) ([]BudgetType, error) {
	query := `SELECT id, name, code, description, default_weekday_rate, default_holiday_rate, default_kilometer_rate
				FROM budget_type ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not query budget types: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var budgetTypes []BudgetType
	for rows.Next() {
		budgetType, err := scanBudgetType(rows.Scan)
		if err != nil {
			log.Error(err)
			return nil, err
		}
		budgetTypes = append(budgetTypes, budgetType)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return budgetTypes, nil
}

func (r BudgetTypeRepoImpl) Get(ctx context.Context, id int) (BudgetType, error) {
	query := `SELECT id, name, code, description, default_weekday_rate, default_holiday_rate, default_kilometer_rate
				FROM budget_type WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)
	budgetType, err := scanBudgetType(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return BudgetType{}, ErrBudgetTypeNotFound
		}
		err := fmt.Errorf("could not get budget type %d: %w", id, err)
		log.Error(err)
		return BudgetType{}, err
	}
	return budgetType, nil
}

func (r BudgetTypeRepoImpl) Update(ctx context.Context, budgetType BudgetType) (bool, error) {
	query := `UPDATE budget_type SET
				name = $1,
				code = $2,
				description = $3,
				default_weekday_rate = $4,
				default_holiday_rate = $5,
				default_kilometer_rate = $6
			WHERE id = $7`
	result, err := r.db.ExecContext(ctx, query,
		budgetType.Name,
		budgetType.Code,
		budgetType.Description,
		budgetType.DefaultWeekdayRate,
		budgetType.DefaultHolidayRate,
		budgetType.DefaultKilometerRate,
		budgetType.ID,
	)
	if err != nil {
		err := fmt.Errorf("could not update budget type: %w", err)
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

func (r BudgetTypeRepoImpl) Delete(ctx context.Context, id int) (bool, error) {
	// fails with a foreign key violation while allocations reference it,
	// which is intended: referential integrity is enforced by the schema
	result, err := r.db.ExecContext(ctx, "DELETE FROM budget_type WHERE id = $1", id)
	if err != nil {
		err := fmt.Errorf("could not delete budget type: %w", err)
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

func scanBudgetType(scan func(dest ...any) error) (BudgetType, error) {
	var budgetType BudgetType
	err := scan(
		&budgetType.ID,
		&budgetType.Name,
		&budgetType.Code,
		&budgetType.Description,
		&budgetType.DefaultWeekdayRate,
		&budgetType.DefaultHolidayRate,
		&budgetType.DefaultKilometerRate,
	)
	return budgetType, err
}
