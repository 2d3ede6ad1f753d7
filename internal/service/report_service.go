package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"bloodlink/internal/domain"
	"bloodlink/internal/repository"
)

// ReportService 管理端报表导出
type ReportService interface {
	// InventoryReport 当前库存快照的 .xlsx 文件内容
	InventoryReport(ctx context.Context) ([]byte, string, error)
}

type reportService struct {
	inventoryRepo repository.InventoryRepository
	logger        *zap.Logger
}

func NewReportService(inventoryRepo repository.InventoryRepository, logger *zap.Logger) ReportService {
	return &reportService{inventoryRepo: inventoryRepo, logger: logger}
}

// inventoryReportHeader 导出表头
var inventoryReportHeader = []string{
	"Unit ID",
	"Blood Group",
	"Collection Date",
	"Expiry Date",
	"Days To Expiry",
	"Freshness",
	"Status",
	"Location",
	"Donor ID",
}

func (s *reportService) InventoryReport(ctx context.Context) ([]byte, string, error) {
	now := time.Now()
	units, err := s.inventoryRepo.ListUnits(ctx, repository.InventoryFilters{}, now)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	// Don't defer Close(); WriteToBuffer needs the file open.

	const sheetName = "Inventory"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, "", fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FCE4E4"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, "", fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range inventoryReportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, "", fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			f.Close()
			return nil, "", fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, "", fmt.Errorf("failed to set header style: %w", err)
		}
	}

	for rowIdx, u := range units {
		row := rowIdx + 2
		donorID := ""
		if u.DonorID.Valid {
			donorID = u.DonorID.String
		}
		values := []any{
			u.UnitID,
			string(u.BloodGroup),
			u.CollectionDate.Format(domain.DateLayout),
			u.ExpiryDate.Format(domain.DateLayout),
			domain.DaysUntilExpiry(u.ExpiryDate, now),
			string(u.Freshness(now)),
			string(u.Status),
			u.Location,
			donorID,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				f.Close()
				return nil, "", fmt.Errorf("failed to convert coordinates: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				f.Close()
				return nil, "", fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		f.Close()
		return nil, "", fmt.Errorf("failed to generate report: %w", err)
	}
	f.Close()

	filename := fmt.Sprintf("inventory_%s.xlsx", now.Format("20060102_150405"))
	s.logger.Info("Inventory report generated",
		zap.Int("units", len(units)),
		zap.String("filename", filename),
	)
	return buf.Bytes(), filename, nil
}
