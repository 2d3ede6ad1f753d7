package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"bloodlink/internal/domain"

	"github.com/lib/pq"
)

type PostgresDonorsRepo struct {
	db *sql.DB
}

func NewPostgresDonorsRepo(db *sql.DB) *PostgresDonorsRepo {
	return &PostgresDonorsRepo{db: db}
}

const donorColumns = `
	donor_id::text, name, age, gender, blood_group, contact, location,
	email, password_hash, verified, last_donation_date, medical_history,
	created_at, updated_at`

func scanDonor(row interface{ Scan(...any) error }) (*domain.Donor, error) {
	var d domain.Donor
	var bloodGroup string
	var lastDonation sql.NullTime
	if err := row.Scan(
		&d.DonorID,
		&d.Name,
		&d.Age,
		&d.Gender,
		&bloodGroup,
		&d.Contact,
		&d.Location,
		&d.Email,
		&d.PasswordHash,
		&d.Verified,
		&lastDonation,
		&d.MedicalHistory,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	d.BloodGroup = domain.BloodType(bloodGroup)
	if lastDonation.Valid {
		t := lastDonation.Time
		d.LastDonationDate = &t
	}
	return &d, nil
}

func (r *PostgresDonorsRepo) GetDonor(ctx context.Context, donorID string) (*domain.Donor, error) {
	if donorID == "" {
		return nil, domain.NewError(domain.ErrInvalidInput, "donor_id is required")
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+donorColumns+` FROM donors WHERE donor_id = $1`, donorID)
	d, err := scanDonor(row)
	if err == sql.ErrNoRows {
		return nil, domain.NewError(domain.ErrDonorNotFound, "donor %s not found", donorID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get donor: %w", err)
	}
	return d, nil
}

func (r *PostgresDonorsRepo) GetDonorByEmail(ctx context.Context, email string) (*domain.Donor, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+donorColumns+` FROM donors WHERE email = $1`, email)
	d, err := scanDonor(row)
	if err == sql.ErrNoRows {
		return nil, domain.NewError(domain.ErrDonorNotFound, "donor with email %s not found", email)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get donor by email: %w", err)
	}
	return d, nil
}

func (r *PostgresDonorsRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM donors WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

func (r *PostgresDonorsRepo) CreateDonor(ctx context.Context, donor *domain.Donor) (string, error) {
	if donor == nil {
		return "", domain.NewError(domain.ErrInvalidInput, "donor is required")
	}
	var id string
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO donors (name, age, gender, blood_group, contact, location,
		                     email, password_hash, verified, last_donation_date, medical_history)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING donor_id::text`,
		donor.Name,
		donor.Age,
		donor.Gender,
		string(donor.BloodGroup),
		donor.Contact,
		donor.Location,
		donor.Email,
		donor.PasswordHash,
		donor.Verified,
		donor.LastDonationDate,
		donor.MedicalHistory,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create donor: %w", err)
	}
	return id, nil
}

func (r *PostgresDonorsRepo) ListDonors(ctx context.Context, filters DonorFilters) ([]*domain.Donor, error) {
	where := []string{"1=1"}
	args := []any{}
	argN := 1

	if len(filters.BloodGroups) > 0 {
		groups := make([]string, 0, len(filters.BloodGroups))
		for _, g := range filters.BloodGroups {
			groups = append(groups, string(g))
		}
		where = append(where, fmt.Sprintf("blood_group = ANY($%d)", argN))
		args = append(args, pq.Array(groups))
		argN++
	}
	if filters.Location != "" {
		where = append(where, fmt.Sprintf("location ILIKE $%d", argN))
		args = append(args, "%"+filters.Location+"%")
		argN++
	}
	if filters.Verified != nil {
		where = append(where, fmt.Sprintf("verified = $%d", argN))
		args = append(args, *filters.Verified)
		argN++
	}
	if filters.ExcludeEmail != "" {
		where = append(where, fmt.Sprintf("email <> $%d", argN))
		args = append(args, filters.ExcludeEmail)
		argN++
	}

	q := `SELECT ` + donorColumns + `
		FROM donors
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY last_donation_date ASC NULLS FIRST, created_at DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list donors: %w", err)
	}
	defer rows.Close()

	out := []*domain.Donor{}
	for rows.Next() {
		d, err := scanDonor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan donor: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *PostgresDonorsRepo) SetVerified(ctx context.Context, donorID string, verified bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE donors SET verified = $1, updated_at = NOW() WHERE donor_id = $2`,
		verified, donorID)
	if err != nil {
		return fmt.Errorf("failed to update donor verification: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.NewError(domain.ErrDonorNotFound, "donor %s not found", donorID)
	}
	return nil
}

func (r *PostgresDonorsRepo) Stats(ctx context.Context) (*DonorStats, error) {
	var s DonorStats
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE verified),
		        COUNT(*) FILTER (WHERE NOT verified)
		 FROM donors`).Scan(&s.Total, &s.Verified, &s.Pending)
	if err != nil {
		return nil, fmt.Errorf("failed to get donor stats: %w", err)
	}
	return &s, nil
}
