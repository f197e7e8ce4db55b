package compensation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

type CompensationRepo interface {
	Store(ctx context.Context, comp Compensation) (int, error)
	Get(ctx context.Context, uid string) (Compensation, error)
	GetByStaff(ctx context.Context, staffID int) ([]Compensation, error)
	GetAll(ctx context.Context) ([]Compensation, error)
	// HasOverlap reports whether the staff member has any compensation
	// whose period overlaps the inclusive range.
	HasOverlap(ctx context.Context, staffID int, periodStart, periodEnd time.Time) (bool, error)
	UpdateStatus(ctx context.Context, uid string, status Status) (bool, error)
	// StoreCharges inserts the charges and moves the compensation to the
	// given status in one transaction.
	StoreCharges(ctx context.Context, uid string, charges []Charge, status Status) error
	Delete(ctx context.Context, uid string) (bool, error)
}

const compensationColumns = `id, uid, staff_id, period_start, period_end, status,
	regular_hours, regular_amount, weekend_hours, weekend_amount,
	holiday_hours, holiday_amount, overtime_hours, overtime_amount,
	kilometers, mileage_amount, total_compensation, created_at`

type CompensationRepoImpl struct {
	db *sql.DB
}

func NewCompensationRepo(db *sql.DB) *CompensationRepoImpl {
	return &CompensationRepoImpl{db: db}
}

func (r CompensationRepoImpl) Store(ctx context.Context, comp Compensation) (int, error) {
	var id int
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO compensation (uid, staff_id, period_start, period_end, status,
			regular_hours, regular_amount, weekend_hours, weekend_amount,
			holiday_hours, holiday_amount, overtime_hours, overtime_amount,
			kilometers, mileage_amount, total_compensation)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 RETURNING id`,
		comp.UID, comp.StaffID, comp.PeriodStart, comp.PeriodEnd, comp.Status,
		comp.Breakdown.Regular.Hours, comp.Breakdown.Regular.Amount,
		comp.Breakdown.Weekend.Hours, comp.Breakdown.Weekend.Amount,
		comp.Breakdown.Holiday.Hours, comp.Breakdown.Holiday.Amount,
		comp.Breakdown.Overtime.Hours, comp.Breakdown.Overtime.Amount,
		comp.Breakdown.Kilometers, comp.Breakdown.MileageAmount,
		comp.Breakdown.TotalCompensation,
	).Scan(&id)
	if err != nil {
		err := fmt.Errorf("could not store compensation: %w", err)
		log.Error(err)
		return 0, err
	}
	return id, nil
}

func (r CompensationRepoImpl) Get(ctx context.Context, uid string) (Compensation, error) {
	comp, err := scanCompensation(r.db.QueryRowContext(ctx,
		"SELECT "+compensationColumns+" FROM compensation WHERE uid = $1", uid).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Compensation{}, ErrCompensationNotFound
		}
		err := fmt.Errorf("could not get compensation %s: %w", uid, err)
		log.Error(err)
		return Compensation{}, err
	}

	charges, err := r.getCharges(ctx, comp.ID)
	if err != nil {
		return Compensation{}, err
	}
	comp.Charges = charges
	return comp, nil
}

func (r CompensationRepoImpl) GetByStaff(ctx context.Context, staffID int) ([]Compensation, error) {
	return r.queryCompensations(ctx,
		"SELECT "+compensationColumns+" FROM compensation WHERE staff_id = $1 ORDER BY period_start DESC", staffID)
}

func (r CompensationRepoImpl) GetAll(ctx context.Context) ([]Compensation, error) {
	return r.queryCompensations(ctx,
		"SELECT "+compensationColumns+" FROM compensation ORDER BY period_start DESC, staff_id")
}

func (r CompensationRepoImpl) HasOverlap(ctx context.Context, staffID int, periodStart, periodEnd time.Time) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM compensation WHERE staff_id = $1 AND period_start <= $3 AND period_end >= $2",
		staffID, periodStart, periodEnd,
	).Scan(&count)
	if err != nil {
		err := fmt.Errorf("could not check compensation overlap: %w", err)
		log.Error(err)
		return false, err
	}
	return count > 0, nil
}

func (r CompensationRepoImpl) UpdateStatus(ctx context.Context, uid string, status Status) (bool, error) {
	result, err := r.db.ExecContext(ctx, "UPDATE compensation SET status = $1 WHERE uid = $2", status, uid)
	if err != nil {
		err := fmt.Errorf("could not update compensation status: %w", err)
		log.Error(err)
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		err := fmt.Errorf("could not get rows affected: %w", err)
		log.Error(err)
		return false, err
	}
	return affected > 0, nil
}

func (r CompensationRepoImpl) StoreCharges(ctx context.Context, uid string, charges []Charge, status Status) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		err := fmt.Errorf("could not begin charges transaction: %w", err)
		log.Error(err)
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var compensationID int
	err = tx.QueryRowContext(ctx, "SELECT id FROM compensation WHERE uid = $1", uid).Scan(&compensationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCompensationNotFound
		}
		err := fmt.Errorf("could not find compensation %s: %w", uid, err)
		log.Error(err)
		return err
	}

	for _, charge := range charges {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO compensation_charge (compensation_id, allocation_id, amount, expense_uid) VALUES ($1, $2, $3, $4)",
			compensationID, charge.AllocationID, charge.Amount, charge.ExpenseUID)
		if err != nil {
			err := fmt.Errorf("could not store compensation charge: %w", err)
			log.Error(err)
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, "UPDATE compensation SET status = $1 WHERE id = $2", status, compensationID); err != nil {
		err := fmt.Errorf("could not update compensation status: %w", err)
		log.Error(err)
		return err
	}

	if err := tx.Commit(); err != nil {
		err := fmt.Errorf("could not commit charges: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r CompensationRepoImpl) Delete(ctx context.Context, uid string) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM compensation WHERE uid = $1", uid)
	if err != nil {
		err := fmt.Errorf("could not delete compensation: %w", err)
		log.Error(err)
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		err := fmt.Errorf("could not get rows affected: %w", err)
		log.Error(err)
		return false, err
	}
	return affected > 0, nil
}

func (r CompensationRepoImpl) getCharges(ctx context.Context, compensationID int) ([]Charge, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, allocation_id, amount, expense_uid FROM compensation_charge WHERE compensation_id = $1 ORDER BY id",
		compensationID)
	if err != nil {
		err := fmt.Errorf("could not query compensation charges: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	charges := make([]Charge, 0)
	for rows.Next() {
		var charge Charge
		if err := rows.Scan(&charge.ID, &charge.AllocationID, &charge.Amount, &charge.ExpenseUID); err != nil {
			err := fmt.Errorf("could not scan compensation charge: %w", err)
			log.Error(err)
			return nil, err
		}
		charges = append(charges, charge)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return charges, nil
}

func (r CompensationRepoImpl) queryCompensations(ctx context.Context, query string, args ...any) ([]Compensation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query compensations: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	compensations := make([]Compensation, 0)
	for rows.Next() {
		comp, err := scanCompensation(rows.Scan)
		if err != nil {
			err := fmt.Errorf("could not scan compensation: %w", err)
			log.Error(err)
			return nil, err
		}
		compensations = append(compensations, comp)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return compensations, nil
}

func scanCompensation(scan func(dest ...any) error) (Compensation, error) {
	var comp Compensation
	err := scan(&comp.ID, &comp.UID, &comp.StaffID, &comp.PeriodStart, &comp.PeriodEnd, &comp.Status,
		&comp.Breakdown.Regular.Hours, &comp.Breakdown.Regular.Amount,
		&comp.Breakdown.Weekend.Hours, &comp.Breakdown.Weekend.Amount,
		&comp.Breakdown.Holiday.Hours, &comp.Breakdown.Holiday.Amount,
		&comp.Breakdown.Overtime.Hours, &comp.Breakdown.Overtime.Amount,
		&comp.Breakdown.Kilometers, &comp.Breakdown.MileageAmount,
		&comp.Breakdown.TotalCompensation, &comp.CreatedAt)
	return comp, err
}
