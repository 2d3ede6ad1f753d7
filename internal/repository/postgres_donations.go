package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"bloodlink/internal/domain"
)

type PostgresDonationsRepo struct {
	db *sql.DB
}

func NewPostgresDonationsRepo(db *sql.DB) *PostgresDonationsRepo {
	return &PostgresDonationsRepo{db: db}
}

// RecordDonation 三个写入在同一事务内完成，全部成功或全部回滚。
// donors 行先 FOR UPDATE 加锁，锁内复核捐献间隔：并发的两次记录
// 只有先提交的一次能通过，后一次在锁内看到新的 last_donation_date 而失败。
func (r *PostgresDonationsRepo) RecordDonation(ctx context.Context, donation *domain.Donation, unit *domain.InventoryUnit) (string, error) {
	if donation == nil {
		return "", domain.NewError(domain.ErrInvalidInput, "donation is required")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Lock the donor row for the duration of the transaction.
	var lastDonation sql.NullTime
	err = tx.QueryRowContext(ctx,
		`SELECT last_donation_date FROM donors WHERE donor_id = $1 AND verified FOR UPDATE`,
		donation.DonorID,
	).Scan(&lastDonation)
	if err == sql.ErrNoRows {
		return "", domain.NewError(domain.ErrDonorNotFound, "donor %s not found or not verified", donation.DonorID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to lock donor row: %w", err)
	}

	// Re-check the interval under the lock.
	if lastDonation.Valid {
		t := lastDonation.Time
		if !domain.IsEligibleToDonate(&t, donation.DonationDate) {
			return "", domain.TooSoon(domain.DaysUntilEligible(&t, donation.DonationDate))
		}
	}

	var donationID string
	err = tx.QueryRowContext(ctx,
		`INSERT INTO donations (donor_id, donation_date, blood_group, units_donated,
		                        location, medical_checkup_passed, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING donation_id::text`,
		donation.DonorID,
		donation.DonationDate,
		string(donation.BloodGroup),
		donation.UnitsDonated,
		donation.Location,
		donation.MedicalCheckupPassed,
		donation.Notes,
	).Scan(&donationID)
	if err != nil {
		return "", fmt.Errorf("failed to insert donation: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE donors SET last_donation_date = $1, updated_at = NOW() WHERE donor_id = $2`,
		donation.DonationDate, donation.DonorID)
	if err != nil {
		return "", fmt.Errorf("failed to update donor: %w", err)
	}

	if unit != nil {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO inventory (blood_group, donor_id, collection_date, expiry_date, status, location, notes)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			string(unit.BloodGroup),
			unit.DonorID,
			unit.CollectionDate,
			unit.ExpiryDate,
			string(domain.UnitAvailable),
			unit.Location,
			unit.Notes,
		)
		if err != nil {
			return "", fmt.Errorf("failed to insert inventory unit: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit donation: %w", err)
	}
	return donationID, nil
}

func (r *PostgresDonationsRepo) ListDonations(ctx context.Context, filters DonationFilters) ([]*DonationRecord, error) {
	where := []string{"1=1"}
	args := []any{}
	argN := 1

	if filters.DonorID != "" {
		where = append(where, fmt.Sprintf("d.donor_id = $%d", argN))
		args = append(args, filters.DonorID)
		argN++
	}
	if filters.BloodGroup != "" {
		where = append(where, fmt.Sprintf("d.blood_group = $%d", argN))
		args = append(args, string(filters.BloodGroup))
		argN++
	}
	if filters.Location != "" {
		where = append(where, fmt.Sprintf("d.location ILIKE $%d", argN))
		args = append(args, "%"+filters.Location+"%")
		argN++
	}
	if filters.StartDate != nil {
		where = append(where, fmt.Sprintf("d.donation_date >= $%d", argN))
		args = append(args, *filters.StartDate)
		argN++
	}
	if filters.EndDate != nil {
		where = append(where, fmt.Sprintf("d.donation_date <= $%d", argN))
		args = append(args, *filters.EndDate)
		argN++
	}

	q := `SELECT d.donation_id::text, d.donor_id::text, d.donation_date, d.blood_group,
	             d.units_donated, d.location, d.medical_checkup_passed, d.notes, d.created_at,
	             dn.name, dn.email, dn.contact
		FROM donations d
		JOIN donors dn ON d.donor_id = dn.donor_id
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY d.donation_date DESC, d.created_at DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list donations: %w", err)
	}
	defer rows.Close()

	out := []*DonationRecord{}
	for rows.Next() {
		var rec DonationRecord
		var bloodGroup string
		var donationDate time.Time
		if err := rows.Scan(
			&rec.DonationID,
			&rec.DonorID,
			&donationDate,
			&bloodGroup,
			&rec.UnitsDonated,
			&rec.Location,
			&rec.MedicalCheckupPassed,
			&rec.Notes,
			&rec.CreatedAt,
			&rec.DonorName,
			&rec.DonorEmail,
			&rec.DonorContact,
		); err != nil {
			return nil, fmt.Errorf("failed to scan donation: %w", err)
		}
		rec.BloodGroup = domain.BloodType(bloodGroup)
		rec.DonationDate = donationDate
		out = append(out, &rec)
	}
	return out, rows.Err()
}
