package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodlink/internal/domain"
)

func setupMockDonationsDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresDonationsRepo) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewPostgresDonationsRepo(db)
	return db, mock, repo
}

func testDonation(donorID string) *domain.Donation {
	return &domain.Donation{
		DonorID:              donorID,
		DonationDate:         time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC),
		BloodGroup:           domain.OPos,
		UnitsDonated:         1,
		Location:             "Central Blood Bank",
		MedicalCheckupPassed: true,
	}
}

func testUnit(donorID string) *domain.InventoryUnit {
	collection := time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC)
	return &domain.InventoryUnit{
		BloodGroup:     domain.OPos,
		DonorID:        sql.NullString{String: donorID, Valid: true},
		CollectionDate: collection,
		ExpiryDate:     domain.ComputeExpiryDate(collection),
		Status:         domain.UnitAvailable,
		Location:       "Central Blood Bank",
	}
}

// ============================================
// RecordDonation 事务测试
// ============================================

func TestRecordDonation_Success(t *testing.T) {
	db, mock, repo := setupMockDonationsDB(t)
	defer db.Close()

	donorID := "11111111-1111-1111-1111-111111111111"
	donation := testDonation(donorID)
	unit := testUnit(donorID)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT last_donation_date FROM donors`).
		WithArgs(donorID).
		WillReturnRows(sqlmock.NewRows([]string{"last_donation_date"}).AddRow(nil))
	mock.ExpectQuery(`INSERT INTO donations`).
		WillReturnRows(sqlmock.NewRows([]string{"donation_id"}).AddRow("d-1"))
	mock.ExpectExec(`UPDATE donors SET last_donation_date`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO inventory`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, err := repo.RecordDonation(context.Background(), donation, unit)

	require.NoError(t, err)
	assert.Equal(t, "d-1", id)
	require.NoError(t, mock.ExpectationsWereMet())
}

// 单次捐献上限 3 个单位，最大值必须原样写入 donations 行
func TestRecordDonation_MaxUnitsAccepted(t *testing.T) {
	db, mock, repo := setupMockDonationsDB(t)
	defer db.Close()

	donorID := "11111111-1111-1111-1111-111111111111"
	donation := testDonation(donorID)
	donation.UnitsDonated = domain.MaxUnitsDonated
	require.NoError(t, domain.ValidateUnitsDonated(donation.UnitsDonated))
	unit := testUnit(donorID)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT last_donation_date FROM donors`).
		WithArgs(donorID).
		WillReturnRows(sqlmock.NewRows([]string{"last_donation_date"}).AddRow(nil))
	mock.ExpectQuery(`INSERT INTO donations`).
		WithArgs(donorID, donation.DonationDate, "O+", domain.MaxUnitsDonated,
			donation.Location, true, donation.Notes).
		WillReturnRows(sqlmock.NewRows([]string{"donation_id"}).AddRow("d-4"))
	mock.ExpectExec(`UPDATE donors SET last_donation_date`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO inventory`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, err := repo.RecordDonation(context.Background(), donation, unit)

	require.NoError(t, err)
	assert.Equal(t, "d-4", id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordDonation_NoUnitWhenCheckupFailed(t *testing.T) {
	db, mock, repo := setupMockDonationsDB(t)
	defer db.Close()

	donorID := "11111111-1111-1111-1111-111111111111"
	donation := testDonation(donorID)
	donation.MedicalCheckupPassed = false

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT last_donation_date FROM donors`).
		WithArgs(donorID).
		WillReturnRows(sqlmock.NewRows([]string{"last_donation_date"}).AddRow(nil))
	mock.ExpectQuery(`INSERT INTO donations`).
		WillReturnRows(sqlmock.NewRows([]string{"donation_id"}).AddRow("d-2"))
	mock.ExpectExec(`UPDATE donors SET last_donation_date`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, err := repo.RecordDonation(context.Background(), donation, nil)

	require.NoError(t, err)
	assert.Equal(t, "d-2", id)
	require.NoError(t, mock.ExpectationsWereMet())
}

// 库存写入失败时整个事务回滚，捐献记录与 last_donation_date 均不落库
func TestRecordDonation_InventoryFailureRollsBackEverything(t *testing.T) {
	db, mock, repo := setupMockDonationsDB(t)
	defer db.Close()

	donorID := "11111111-1111-1111-1111-111111111111"
	donation := testDonation(donorID)
	unit := testUnit(donorID)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT last_donation_date FROM donors`).
		WithArgs(donorID).
		WillReturnRows(sqlmock.NewRows([]string{"last_donation_date"}).AddRow(nil))
	mock.ExpectQuery(`INSERT INTO donations`).
		WillReturnRows(sqlmock.NewRows([]string{"donation_id"}).AddRow("d-3"))
	mock.ExpectExec(`UPDATE donors SET last_donation_date`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO inventory`).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	id, err := repo.RecordDonation(context.Background(), donation, unit)

	assert.Error(t, err)
	assert.Empty(t, id)
	// 不应出现 Commit
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordDonation_DonorNotFoundOrUnverified(t *testing.T) {
	db, mock, repo := setupMockDonationsDB(t)
	defer db.Close()

	donorID := "22222222-2222-2222-2222-222222222222"
	donation := testDonation(donorID)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT last_donation_date FROM donors`).
		WithArgs(donorID).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.RecordDonation(context.Background(), donation, nil)

	assert.Equal(t, domain.ErrDonorNotFound, domain.KindOf(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

// 锁内复核：行锁释放后看到更新的 last_donation_date，间隔不足则失败
func TestRecordDonation_IntervalRecheckUnderLock(t *testing.T) {
	db, mock, repo := setupMockDonationsDB(t)
	defer db.Close()

	donorID := "11111111-1111-1111-1111-111111111111"
	donation := testDonation(donorID) // 2025-09-10
	lastDonation := time.Date(2025, 8, 30, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT last_donation_date FROM donors`).
		WithArgs(donorID).
		WillReturnRows(sqlmock.NewRows([]string{"last_donation_date"}).AddRow(lastDonation))
	mock.ExpectRollback()

	_, err := repo.RecordDonation(context.Background(), donation, nil)

	assert.Equal(t, domain.ErrDonationTooSoon, domain.KindOf(err))
	var de *domain.Error
	require.ErrorAs(t, err, &de)
	// 2025-08-30 起 11 天，剩余 79 天
	assert.Equal(t, 79, de.RemainingDays)
	require.NoError(t, mock.ExpectationsWereMet())
}

// ============================================
// ListDonations 测试
// ============================================

func TestListDonations_FiltersByDonor(t *testing.T) {
	db, mock, repo := setupMockDonationsDB(t)
	defer db.Close()

	donorID := "11111111-1111-1111-1111-111111111111"
	rows := sqlmock.NewRows([]string{
		"donation_id", "donor_id", "donation_date", "blood_group",
		"units_donated", "location", "medical_checkup_passed", "notes", "created_at",
		"name", "email", "contact",
	}).AddRow(
		"d-1", donorID, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), "O+",
		2, "City Hospital", true, nil, time.Now(),
		"John Smith", "john@example.com", "+1 555 000 1111",
	)

	mock.ExpectQuery(`SELECT .* FROM donations d\s+JOIN donors dn`).
		WithArgs(donorID).
		WillReturnRows(rows)

	records, err := repo.ListDonations(context.Background(), DonationFilters{DonorID: donorID})

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.OPos, records[0].BloodGroup)
	assert.Equal(t, "John Smith", records[0].DonorName)
	assert.Equal(t, 2, records[0].UnitsDonated)
	require.NoError(t, mock.ExpectationsWereMet())
}
