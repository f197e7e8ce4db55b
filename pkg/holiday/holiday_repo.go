package holiday

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

type HolidayRepo interface {
	Store(ctx context.Context, holiday Holiday) (int, error)
	// StoreAll inserts holidays, silently skipping dates already present.
	// Returns the number of newly inserted rows.
	StoreAll(ctx context.Context, holidays []Holiday) (int, error)
	GetRange(ctx context.Context, from, to time.Time) ([]Holiday, error)
	Exists(ctx context.Context, date time.Time) (bool, error)
	Delete(ctx context.Context, id int) (bool, error)
}

type HolidayRepoImpl struct {
	db *sql.DB
}

func NewHolidayRepo(db *sql.DB) *HolidayRepoImpl {
	return &HolidayRepoImpl{db: db}
}

func (r HolidayRepoImpl) Store(ctx context.Context, holiday Holiday) (int, error) {
	query := `INSERT INTO holiday (date, name) VALUES ($1, $2) RETURNING id`
	var id int
	err := r.db.QueryRowContext(ctx, query, DateOnly(holiday.Date).Format("2006-01-02"), holiday.Name).Scan(&id)
	if err != nil {
		err := fmt.Errorf("could not store holiday: %w", err)
		log.Error(err)
		return 0, err
	}
	return id, nil
}

func (r HolidayRepoImpl) StoreAll(ctx context.Context, holidays []Holiday) (int, error) {
	query := `INSERT INTO holiday (date, name) VALUES ($1, $2) ON CONFLICT (date) DO NOTHING`
	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not prepare query: %w", err)
		log.Error(err)
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for _, holiday := range holidays {
		result, err := stmt.ExecContext(ctx, DateOnly(holiday.Date).Format("2006-01-02"), holiday.Name)
		if err != nil {
			err := fmt.Errorf("could not store holiday %s: %w", holiday.Date.Format("2006-01-02"), err)
			log.Error(err)
			return inserted, err
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			err := fmt.Errorf("could not get rows affected: %w", err)
			log.Error(err)
			return inserted, err
		}
		inserted += int(rowsAffected)
	}
	return inserted, nil
}

func (r HolidayRepoImpl) GetRange(ctx context.Context, from, to time.Time) ([]Holiday, error) {
	query := `SELECT id, date, name FROM holiday WHERE date >= $1 AND date <= $2 ORDER BY date`
	rows, err := r.db.QueryContext(ctx, query, DateOnly(from).Format("2006-01-02"), DateOnly(to).Format("2006-01-02"))
	if err != nil {
		err := fmt.Errorf("could not query holidays: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var holidays []Holiday
	for rows.Next() {
		var holiday Holiday
		if err := rows.Scan(&holiday.ID, &holiday.Date, &holiday.Name); err != nil {
			err := fmt.Errorf("could not scan holiday: %w", err)
			log.Error(err)
			return nil, err
		}
		holiday.Date = DateOnly(holiday.Date)
		holidays = append(holidays, holiday)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return holidays, nil
}

func (r HolidayRepoImpl) Exists(ctx context.Context, date time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM holiday WHERE date = $1)",
		DateOnly(date).Format("2006-01-02"),
	).Scan(&exists)
	if err != nil {
		err := fmt.Errorf("could not check holiday existence: %w", err)
		log.Error(err)
		return false, err
	}
	return exists, nil
}

func (r HolidayRepoImpl) Delete(ctx context.Context, id int) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM holiday WHERE id = $1", id)
	if err != nil {
		err := fmt.Errorf("could not delete holiday: %w", err)
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
