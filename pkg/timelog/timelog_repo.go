package timelog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

var ErrTimeLogNotFound = errors.New("time log not found")

type TimeLogRepo interface {
	Store(ctx context.Context, timeLog TimeLog) (int, error)
	Get(ctx context.Context, id int) (TimeLog, error)
	// GetByStaff returns the staff member's logs with a service date in the
	// inclusive range, ordered by service date.
	GetByStaff(ctx context.Context, staffID int, from, to time.Time) ([]TimeLog, error)
	GetByClient(ctx context.Context, clientID int, from, to time.Time) ([]TimeLog, error)
	SetExpenseUID(ctx context.Context, id int, expenseUID string) error
	Delete(ctx context.Context, id int) (bool, error)
}

const timeLogColumns = "id, client_id, staff_id, allocation_id, start_time, end_time, service_date, hours, kilometers, hourly_rate, total_cost, description, expense_uid, created_at"

type TimeLogRepoImpl struct {
	db *sql.DB
}

func NewTimeLogRepo(db *sql.DB) *TimeLogRepoImpl {
	return &TimeLogRepoImpl{db: db}
}

func (r TimeLogRepoImpl) Store(ctx context.Context, timeLog TimeLog) (int, error) {
	var id int
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO time_log (client_id, staff_id, allocation_id, start_time, end_time, service_date, hours, kilometers, hourly_rate, total_cost, description)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id`,
		timeLog.ClientID, timeLog.StaffID, timeLog.AllocationID, timeLog.StartTime, timeLog.EndTime,
		timeLog.ServiceDate, timeLog.Hours, timeLog.Kilometers, timeLog.HourlyRate, timeLog.TotalCost,
		timeLog.Description,
	).Scan(&id)
	if err != nil {
		err := fmt.Errorf("could not store time log: %w", err)
		log.Error(err)
		return 0, err
	}
	return id, nil
}

func (r TimeLogRepoImpl) Get(ctx context.Context, id int) (TimeLog, error) {
	timeLog, err := scanTimeLog(r.db.QueryRowContext(ctx,
		"SELECT "+timeLogColumns+" FROM time_log WHERE id = $1", id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TimeLog{}, ErrTimeLogNotFound
		}
		err := fmt.Errorf("could not get time log %d: %w", id, err)
		log.Error(err)
		return TimeLog{}, err
	}
	return timeLog, nil
}

func (r TimeLogRepoImpl) GetByStaff(ctx context.Context, staffID int, from, to time.Time) ([]TimeLog, error) {
	return r.queryTimeLogs(ctx,
		"SELECT "+timeLogColumns+" FROM time_log WHERE staff_id = $1 AND service_date BETWEEN $2 AND $3 ORDER BY service_date, id",
		staffID, from, to)
}

func (r TimeLogRepoImpl) GetByClient(ctx context.Context, clientID int, from, to time.Time) ([]TimeLog, error) {
	return r.queryTimeLogs(ctx,
		"SELECT "+timeLogColumns+" FROM time_log WHERE client_id = $1 AND service_date BETWEEN $2 AND $3 ORDER BY service_date, id",
		clientID, from, to)
}

func (r TimeLogRepoImpl) SetExpenseUID(ctx context.Context, id int, expenseUID string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE time_log SET expense_uid = $1 WHERE id = $2", expenseUID, id)
	if err != nil {
		err := fmt.Errorf("could not link expense to time log %d: %w", id, err)
		log.Error(err)
		return err
	}
	return nil
}

func (r TimeLogRepoImpl) Delete(ctx context.Context, id int) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM time_log WHERE id = $1", id)
	if err != nil {
		err := fmt.Errorf("could not delete time log: %w", err)
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

func (r TimeLogRepoImpl) queryTimeLogs(ctx context.Context, query string, args ...any) ([]TimeLog, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query time logs: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	timeLogs := make([]TimeLog, 0)
	for rows.Next() {
		timeLog, err := scanTimeLog(rows.Scan)
		if err != nil {
			err := fmt.Errorf("could not scan time log: %w", err)
			log.Error(err)
			return nil, err
		}
		timeLogs = append(timeLogs, timeLog)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return timeLogs, nil
}

func scanTimeLog(scan func(dest ...any) error) (TimeLog, error) {
	var timeLog TimeLog
	err := scan(&timeLog.ID, &timeLog.ClientID, &timeLog.StaffID, &timeLog.AllocationID,
		&timeLog.StartTime, &timeLog.EndTime, &timeLog.ServiceDate, &timeLog.Hours,
		&timeLog.Kilometers, &timeLog.HourlyRate, &timeLog.TotalCost, &timeLog.Description,
		&timeLog.ExpenseUID, &timeLog.CreatedAt)
	return timeLog, err
}
