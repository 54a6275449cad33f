package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/sales/internal/domain"
)

const (
	opTimeout = 5 * time.Second
)

type clientRepository struct {
	db *sql.DB
}

// NewClientRepository создаёт PostgreSQL-реализацию ClientRepository.
func NewClientRepository(store *Store) domain.ClientRepository {
	return &clientRepository{db: store.DB()}
}

func (r *clientRepository) Create(client domain.Client) (domain.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO clients (name, email)
		VALUES ($1, $2)
		RETURNING id, registered_at
	`, client.Name, client.Email).Scan(&client.ID, &client.RegisteredAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Client{}, domain.ErrEmailTaken
		}
		return domain.Client{}, fmt.Errorf("insert client: %w", err)
	}

	return client, nil
}

func (r *clientRepository) Get(id int64) (domain.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var client domain.Client
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, registered_at
		FROM clients
		WHERE id = $1
	`, id).Scan(&client.ID, &client.Name, &client.Email, &client.RegisteredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Client{}, domain.ErrClientNotFound
		}
		return domain.Client{}, fmt.Errorf("select client: %w", err)
	}

	return client, nil
}

func (r *clientRepository) FindByTerm(term string) ([]domain.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	// Терм совпадает либо с id целиком, либо с подстрокой имени без учёта регистра.
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, registered_at
		FROM clients
		WHERE CAST(id AS TEXT) = $1 OR name ILIKE '%' || $1 || '%'
		ORDER BY id ASC
	`, term)
	if err != nil {
		return nil, fmt.Errorf("find clients: %w", err)
	}

	return scanClients(rows)
}

func (r *clientRepository) List() ([]domain.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, registered_at
		FROM clients
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}

	return scanClients(rows)
}

func scanClients(rows *sql.Rows) ([]domain.Client, error) {
	defer rows.Close()

	clients := make([]domain.Client, 0)
	for rows.Next() {
		var client domain.Client
		if err := rows.Scan(&client.ID, &client.Name, &client.Email, &client.RegisteredAt); err != nil {
			return nil, fmt.Errorf("scan client row: %w", err)
		}
		clients = append(clients, client)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate client rows: %w", err)
	}

	return clients, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

var _ domain.ClientRepository = (*clientRepository)(nil)
