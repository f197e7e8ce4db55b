package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

var ErrClientNotFound = errors.New("client not found")

type ClientRepo interface {
	Store(ctx context.Context, client Client) (int, error)
	Get(ctx context.Context, id int) (Client, error)
	GetAll(ctx context.Context, includeInactive bool) ([]Client, error)
	Update(ctx context.Context, client Client) (bool, error)
	UpdateStatus(ctx context.Context, id int, status ClientStatus) (bool, error)
}

type ClientRepoImpl struct {
	db *sql.DB
}

func NewClientRepo(db *sql.DB) *ClientRepoImpl {
	return &ClientRepoImpl{db: db}
}

func (r ClientRepoImpl) Store(ctx context.Context, client Client) (int, error) {
	query := `INSERT INTO client (first_name, last_name, email, phone, address, status)
				VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	var id int
	err := r.db.QueryRowContext(ctx, query,
		client.FirstName,
		client.LastName,
		client.Email,
		client.Phone,
		client.Address,
		client.Status,
	).Scan(&id)
	if err != nil {
		err := fmt.Errorf("could not store client: %w", err)
		log.Error(err)
		return 0, err
	}
	return id, nil
}

func (r ClientRepoImpl) Get(ctx context.Context, id int) (Client, error) {
	query := `SELECT id, first_name, last_name, email, phone, address, status, created_at
				FROM client WHERE id = $1`
	var client Client
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&client.ID,
		&client.FirstName,
		&client.LastName,
		&client.Email,
		&client.Phone,
		&client.Address,
		&client.Status,
		&client.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Client{}, ErrClientNotFound
		}
		err := fmt.Errorf("could not get client %d: %w", id, err)
		log.Error(err)
		return Client{}, err
	}
	return client, nil
}

func (r ClientRepoImpl) GetAll(ctx context.Context, includeInactive bool) ([]Client, error) {
	statusWhereQuery := "WHERE status != 'inactive'"
	if includeInactive {
		statusWhereQuery = ""
	}
	query := fmt.Sprintf(
		`SELECT id, first_name, last_name, email, phone, address, status, created_at
				FROM client %s ORDER BY last_name, first_name`,
		statusWhereQuery,
	)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not query clients: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		var client Client
		if err := rows.Scan(
			&client.ID,
			&client.FirstName,
			&client.LastName,
			&client.Email,
			&client.Phone,
			&client.Address,
			&client.Status,
			&client.CreatedAt,
		); err != nil {
			err := fmt.Errorf("could not scan client: %w", err)
			log.Error(err)
			return nil, err
		}
		clients = append(clients, client)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return clients, nil
}

func (r ClientRepoImpl) Update(ctx context.Context, client Client) (bool, error) {
	query := `UPDATE client SET
				first_name = $1,
				last_name = $2,
				email = $3,
				phone = $4,
				address = $5
			WHERE id = $6`
	result, err := r.db.ExecContext(ctx, query,
		client.FirstName,
		client.LastName,
		client.Email,
		client.Phone,
		client.Address,
		client.ID,
	)
	if err != nil {
		err := fmt.Errorf("could not update client: %w", err)
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

func (r ClientRepoImpl) UpdateStatus(ctx context.Context, id int, status ClientStatus) (bool, error) {
	result, err := r.db.ExecContext(ctx, "UPDATE client SET status = $1 WHERE id = $2", status, id)
	if err != nil {
		err := fmt.Errorf("could not update client status: %w", err)
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
