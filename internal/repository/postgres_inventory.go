package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"bloodlink/internal/domain"

	"github.com/lib/pq"
)

type PostgresInventoryRepo struct {
	db *sql.DB
}

func NewPostgresInventoryRepo(db *sql.DB) *PostgresInventoryRepo {
	return &PostgresInventoryRepo{db: db}
}

const unitColumns = `
	unit_id::text,
	blood_group,
	CASE WHEN donor_id IS NULL THEN NULL ELSE donor_id::text END,
	collection_date, expiry_date, status, location, notes,
	created_at, updated_at`

func scanUnit(row interface{ Scan(...any) error }) (*domain.InventoryUnit, error) {
	var u domain.InventoryUnit
	var bloodGroup, status string
	if err := row.Scan(
		&u.UnitID,
		&bloodGroup,
		&u.DonorID,
		&u.CollectionDate,
		&u.ExpiryDate,
		&status,
		&u.Location,
		&u.Notes,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.BloodGroup = domain.BloodType(bloodGroup)
	u.Status = domain.UnitStatus(status)
	return &u, nil
}

func (r *PostgresInventoryRepo) GetUnit(ctx context.Context, unitID string) (*domain.InventoryUnit, error) {
	if unitID == "" {
		return nil, domain.NewError(domain.ErrInvalidInput, "unit_id is required")
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+unitColumns+` FROM inventory WHERE unit_id = $1`, unitID)
	u, err := scanUnit(row)
	if err == sql.ErrNoRows {
		return nil, domain.NewError(domain.ErrNotFound, "inventory unit %s not found", unitID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory unit: %w", err)
	}
	return u, nil
}

func (r *PostgresInventoryRepo) CreateUnit(ctx context.Context, unit *domain.InventoryUnit) (string, error) {
	if unit == nil {
		return "", domain.NewError(domain.ErrInvalidInput, "unit is required")
	}
	status := unit.Status
	if status == "" {
		status = domain.UnitAvailable
	}
	var id string
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO inventory (blood_group, donor_id, collection_date, expiry_date, status, location, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING unit_id::text`,
		string(unit.BloodGroup),
		unit.DonorID,
		unit.CollectionDate,
		unit.ExpiryDate,
		string(status),
		unit.Location,
		unit.Notes,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create inventory unit: %w", err)
	}
	return id, nil
}

func buildInventoryWhere(filters InventoryFilters, asOf time.Time, argN int) ([]string, []any, int) {
	where := []string{"1=1"}
	args := []any{}

	if filters.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", argN))
		args = append(args, string(filters.Status))
		argN++
	}
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
	if filters.ExpiredOnly {
		where = append(where, fmt.Sprintf("expiry_date <= $%d", argN))
		args = append(args, asOf)
		argN++
	}
	if filters.AvailableOnly {
		where = append(where, fmt.Sprintf("status = 'available' AND expiry_date > $%d", argN))
		args = append(args, asOf)
		argN++
	}
	return where, args, argN
}

func (r *PostgresInventoryRepo) ListUnits(ctx context.Context, filters InventoryFilters, asOf time.Time) ([]*domain.InventoryUnit, error) {
	where, args, _ := buildInventoryWhere(filters, asOf, 1)

	q := `SELECT ` + unitColumns + `
		FROM inventory
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY expiry_date ASC, blood_group`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	defer rows.Close()

	out := []*domain.InventoryUnit{}
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inventory unit: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// SetStatus 条件更新（CAS）：WHERE 同时匹配 unit_id 与期望的当前状态，
// 并发流转只会有一个写入生效。
func (r *PostgresInventoryRepo) SetStatus(ctx context.Context, unitID string, from, to domain.UnitStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE inventory SET status = $1, updated_at = NOW() WHERE unit_id = $2 AND status = $3`,
		string(to), unitID, string(from))
	if err != nil {
		return fmt.Errorf("failed to update inventory status: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		// 行不存在，或状态在读取后已被并发变更
		if _, gerr := r.GetUnit(ctx, unitID); gerr != nil {
			return gerr
		}
		return domain.NewError(domain.ErrInvalidTransition,
			"inventory unit %s is no longer %s", unitID, string(from))
	}
	return nil
}

func (r *PostgresInventoryRepo) Stats(ctx context.Context, asOf time.Time) (*InventoryStats, error) {
	var s InventoryStats
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE status = 'available' AND expiry_date > $1),
		        COUNT(*) FILTER (WHERE expiry_date <= $1),
		        COUNT(*) FILTER (WHERE expiry_date > $1 AND expiry_date <= $2)
		 FROM inventory`,
		asOf, asOf.AddDate(0, 0, domain.ExpiringSoonThresholdDays),
	).Scan(&s.Total, &s.Available, &s.Expired, &s.ExpiringSoon)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory stats: %w", err)
	}
	return &s, nil
}

func (r *PostgresInventoryRepo) AvailableByGroup(ctx context.Context, asOf time.Time) ([]GroupCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT blood_group, COUNT(*)
		 FROM inventory
		 WHERE status = 'available' AND expiry_date > $1
		 GROUP BY blood_group
		 ORDER BY blood_group`, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to get blood distribution: %w", err)
	}
	defer rows.Close()

	out := []GroupCount{}
	for rows.Next() {
		var gc GroupCount
		var group string
		if err := rows.Scan(&group, &gc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan blood distribution: %w", err)
		}
		gc.BloodGroup = domain.BloodType(group)
		out = append(out, gc)
	}
	return out, rows.Err()
}

func (r *PostgresInventoryRepo) SummaryForGroups(ctx context.Context, groups []domain.BloodType, asOf time.Time) ([]GroupSummary, error) {
	if len(groups) == 0 {
		return []GroupSummary{}, nil
	}
	strs := make([]string, 0, len(groups))
	for _, g := range groups {
		strs = append(strs, string(g))
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT blood_group, location, COUNT(*), MIN(expiry_date)
		 FROM inventory
		 WHERE blood_group = ANY($1) AND status = 'available' AND expiry_date > $2
		 GROUP BY blood_group, location
		 ORDER BY blood_group, location`,
		pq.Array(strs), asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory summary: %w", err)
	}
	defer rows.Close()

	out := []GroupSummary{}
	for rows.Next() {
		var gs GroupSummary
		var group string
		if err := rows.Scan(&group, &gs.Location, &gs.UnitsAvailable, &gs.EarliestExpiry); err != nil {
			return nil, fmt.Errorf("failed to scan inventory summary: %w", err)
		}
		gs.BloodGroup = domain.BloodType(group)
		out = append(out, gs)
	}
	return out, rows.Err()
}
