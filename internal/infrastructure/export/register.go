package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/donation-desk/internal/application/port"
	"github.com/garyjia/donation-desk/internal/domain/entity"
)

const registerSheet = "Donations"

var registerHeaders = []string{
	"Donation", "Date", "Donor", "Donor Name", "Email", "Company",
	"Mode of Payment", "Payment ID", "Currency", "Amount", "Paid", "Invoice", "Status",
}

// ExcelRegister implements port.RegisterWriter with excelize
type ExcelRegister struct {
	logger *zap.Logger
}

// NewExcelRegister creates a new register writer
func NewExcelRegister(logger *zap.Logger) *ExcelRegister {
	return &ExcelRegister{logger: logger}
}

// WriteDonationRegister renders a title row, a header row, one row per
// donation and a total row summing the Amount column.
func (r *ExcelRegister) WriteDonationRegister(title string, donations []*entity.Donation) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", registerSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	r.setCell(f, "A1", title)

	for i, h := range registerHeaders {
		r.setCell(f, cellName(i+1, 2), h)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	lastCol := cellName(len(registerHeaders), 2)
	if err := f.SetCellStyle(registerSheet, "A2", lastCol, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	row := 3
	for _, d := range donations {
		values := []interface{}{
			d.Name,
			formatDate(d),
			d.Donor,
			d.DonorName,
			d.Email,
			d.Company,
			d.ModeOfPayment,
			d.PaymentID,
			d.Currency,
			d.Amount,
			yesNo(d.Paid),
			d.Invoice,
			d.DocStatus.String(),
		}
		for col, v := range values {
			r.setCell(f, cellName(col+1, row), v)
		}
		row++
	}

	amountCol := columnName(10)
	r.setCell(f, cellName(9, row), "Total")
	if len(donations) > 0 {
		formula := fmt.Sprintf("SUM(%s3:%s%d)", amountCol, amountCol, row-1)
		if err := f.SetCellFormula(registerSheet, cellName(10, row), formula); err != nil {
			return nil, fmt.Errorf("failed to set total formula: %w", err)
		}
	} else {
		r.setCell(f, cellName(10, row), 0)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	r.logger.Info("Donation register rendered", zap.Int("rows", len(donations)))
	return buf.Bytes(), nil
}

func (r *ExcelRegister) setCell(f *excelize.File, cell string, value interface{}) {
	if err := f.SetCellValue(registerSheet, cell, value); err != nil {
		r.logger.Warn("Failed to set cell value",
			zap.String("cell", cell),
			zap.Error(err))
	}
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func columnName(col int) string {
	name, _ := excelize.ColumnNumberToName(col)
	return name
}

func formatDate(d *entity.Donation) string {
	if d.Date.IsZero() {
		return ""
	}
	return d.Date.Format("2006-01-02")
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

var _ port.RegisterWriter = (*ExcelRegister)(nil)
