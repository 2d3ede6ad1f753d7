package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"bloodlink/internal/domain"
)

type PostgresRequestsRepo struct {
	db *sql.DB
}

func NewPostgresRequestsRepo(db *sql.DB) *PostgresRequestsRepo {
	return &PostgresRequestsRepo{db: db}
}

const requestColumns = `
	request_id::text, requester_name, requester_contact, requester_email,
	blood_group, location, urgency, hospital, required_date, units_needed,
	status, notes, created_at, updated_at`

func scanRequest(row interface{ Scan(...any) error }) (*domain.BloodRequest, error) {
	var r domain.BloodRequest
	var bloodGroup, urgency, status string
	if err := row.Scan(
		&r.RequestID,
		&r.RequesterName,
		&r.RequesterContact,
		&r.RequesterEmail,
		&bloodGroup,
		&r.Location,
		&urgency,
		&r.Hospital,
		&r.RequiredDate,
		&r.UnitsNeeded,
		&status,
		&r.Notes,
		&r.CreatedAt,
		&r.UpdatedAt,
	); err != nil {
		return nil, err
	}
	r.BloodGroup = domain.BloodType(bloodGroup)
	r.Urgency = domain.Urgency(urgency)
	r.Status = domain.RequestStatus(status)
	return &r, nil
}

func (p *PostgresRequestsRepo) GetRequest(ctx context.Context, requestID string) (*domain.BloodRequest, error) {
	if requestID == "" {
		return nil, domain.NewError(domain.ErrInvalidInput, "request_id is required")
	}
	row := p.db.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE request_id = $1`, requestID)
	r, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return nil, domain.NewError(domain.ErrNotFound, "request %s not found", requestID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return r, nil
}

func (p *PostgresRequestsRepo) CreateRequest(ctx context.Context, req *domain.BloodRequest) (string, error) {
	if req == nil {
		return "", domain.NewError(domain.ErrInvalidInput, "request is required")
	}
	var id string
	err := p.db.QueryRowContext(ctx,
		`INSERT INTO requests (requester_name, requester_contact, requester_email,
		                       blood_group, location, urgency, hospital,
		                       required_date, units_needed, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING request_id::text`,
		req.RequesterName,
		req.RequesterContact,
		req.RequesterEmail,
		string(req.BloodGroup),
		req.Location,
		string(req.Urgency),
		req.Hospital,
		req.RequiredDate,
		req.UnitsNeeded,
		req.Notes,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	return id, nil
}

func (p *PostgresRequestsRepo) ListRequests(ctx context.Context, filters RequestFilters) ([]*domain.BloodRequest, error) {
	where := []string{"1=1"}
	args := []any{}
	argN := 1

	if filters.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", argN))
		args = append(args, string(filters.Status))
		argN++
	}
	if filters.BloodGroup != "" {
		where = append(where, fmt.Sprintf("blood_group = $%d", argN))
		args = append(args, string(filters.BloodGroup))
		argN++
	}
	if filters.Urgency != "" {
		where = append(where, fmt.Sprintf("urgency = $%d", argN))
		args = append(args, string(filters.Urgency))
		argN++
	}
	if filters.Location != "" {
		where = append(where, fmt.Sprintf("location ILIKE $%d", argN))
		args = append(args, "%"+filters.Location+"%")
		argN++
	}
	if filters.RequesterEmail != "" {
		where = append(where, fmt.Sprintf("requester_email = $%d", argN))
		args = append(args, filters.RequesterEmail)
		argN++
	}

	// Critical first, then by required date.
	q := `SELECT ` + requestColumns + `
		FROM requests
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY CASE urgency
			WHEN 'Critical' THEN 1
			WHEN 'High' THEN 2
			WHEN 'Medium' THEN 3
			ELSE 4
		END, required_date ASC`

	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	out := []*domain.BloodRequest{}
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *PostgresRequestsRepo) SetStatus(ctx context.Context, requestID string, status domain.RequestStatus) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE requests SET status = $1, updated_at = NOW() WHERE request_id = $2`,
		string(status), requestID)
	if err != nil {
		return fmt.Errorf("failed to update request status: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.NewError(domain.ErrNotFound, "request %s not found", requestID)
	}
	return nil
}

func (p *PostgresRequestsRepo) DeleteRequest(ctx context.Context, requestID string) error {
	res, err := p.db.ExecContext(ctx,
		`DELETE FROM requests WHERE request_id = $1`, requestID)
	if err != nil {
		return fmt.Errorf("failed to delete request: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.NewError(domain.ErrNotFound, "request %s not found", requestID)
	}
	return nil
}

func (p *PostgresRequestsRepo) Stats(ctx context.Context) (*RequestStats, error) {
	var s RequestStats
	err := p.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE status = 'pending'),
		        COUNT(*) FILTER (WHERE status = 'fulfilled'),
		        COUNT(*) FILTER (WHERE status = 'pending' AND urgency = 'Critical')
		 FROM requests`).Scan(&s.Total, &s.Pending, &s.Fulfilled, &s.Critical)
	if err != nil {
		return nil, fmt.Errorf("failed to get request stats: %w", err)
	}
	return &s, nil
}
