package staff

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

var ErrStaffNotFound = errors.New("staff member not found")

type StaffRepo interface {
	Store(ctx context.Context, staff Staff) (int, error)
	Get(ctx context.Context, id int) (Staff, error)
	GetAll(ctx context.Context, includeInactive bool) ([]Staff, error)
	Update(ctx context.Context, staff Staff) (bool, error)
	UpdateStatus(ctx context.Context, id int, status StaffStatus) (bool, error)
}

type StaffRepoImpl struct {
	db *sql.DB
}

func NewStaffRepo(db *sql.DB) *StaffRepoImpl {
	return &StaffRepoImpl{db: db}
}

func (r StaffRepoImpl) Store(ctx context.Context, staff Staff) (int, error) {
	query := `INSERT INTO staff (first_name, last_name, email, phone, weekday_rate, holiday_rate, kilometer_rate, status)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`

	var id int
	err := r.db.QueryRowContext(ctx, query,
		staff.FirstName,
		staff.LastName,
		staff.Email,
		staff.Phone,
		staff.WeekdayRate,
		staff.HolidayRate,
		staff.KilometerRate,
		staff.Status,
	).Scan(&id)
	if err != nil {
		err := fmt.Errorf("could not store staff member: %w", err)
		log.Error(err)
		return 0, err
	}
	return id, nil
}

func (r StaffRepoImpl) Get(ctx context.Context, id int) (Staff, error) {
	query := `SELECT id, first_name, last_name, email, phone, weekday_rate, holiday_rate, kilometer_rate, status, created_at
				FROM staff WHERE id = $1`
	var staff Staff
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&staff.ID,
		&staff.FirstName,
		&staff.LastName,
		&staff.Email,
		&staff.Phone,
		&staff.WeekdayRate,
		&staff.HolidayRate,
		&staff.KilometerRate,
		&staff.Status,
		&staff.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Staff{}, ErrStaffNotFound
		}
		err := fmt.Errorf("could not get staff member %d: %w", id, err)
		log.Error(err)
		return Staff{}, err
	}
	return staff, nil
}

func (r StaffRepoImpl) GetAll(ctx context.Context, includeInactive bool) ([]Staff, error) {
	statusWhereQuery := "WHERE status != 'inactive'"
	if includeInactive {
		statusWhereQuery = ""
	}
	query := fmt.Sprintf(
		`SELECT id, first_name, last_name, email, phone, weekday_rate, holiday_rate, kilometer_rate, status, created_at
				FROM staff %s ORDER BY last_name, first_name`,
		statusWhereQuery,
	)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not query staff: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var members []Staff
	for rows.Next() {
		var staff Staff
		if err := rows.Scan(
			&staff.ID,
			&staff.FirstName,
			&staff.LastName,
			&staff.Email,
			&staff.Phone,
			&staff.WeekdayRate,
			&staff.HolidayRate,
			&staff.KilometerRate,
			&staff.Status,
			&staff.CreatedAt,
		); err != nil {
			err := fmt.Errorf("could not scan staff member: %w", err)
			log.Error(err)
			return nil, err
		}
		members = append(members, staff)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return members, nil
}

func (r StaffRepoImpl) Update(ctx context.Context, staff Staff) (bool, error) {
	query := `UPDATE staff SET
				first_name = $1,
				last_name = $2,
				email = $3,
				phone = $4,
				weekday_rate = $5,
				holiday_rate = $6,
				kilometer_rate = $7
			WHERE id = $8`
	result, err := r.db.ExecContext(ctx, query,
		staff.FirstName,
		staff.LastName,
		staff.Email,
		staff.Phone,
		staff.WeekdayRate,
		staff.HolidayRate,
		staff.KilometerRate,
		staff.ID,
	)
	if err != nil {
		err := fmt.Errorf("could not update staff member: %w", err)
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

func (r StaffRepoImpl) UpdateStatus(ctx context.Context, id int, status StaffStatus) (bool, error) {
	result, err := r.db.ExecContext(ctx, "UPDATE staff SET status = $1 WHERE id = $2", status, id)
	if err != nil {
		err := fmt.Errorf("could not update staff status: %w", err)
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
