// Package report renders maintenance reports as PDF and XLSX.
package report

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/ukydev/robot-fleet/internal/models"
	"github.com/ukydev/robot-fleet/internal/service"
)

const (
	TypeMaintenanceStatus  = "maintenance-status"
	TypeMaintenanceHistory = "maintenance-history"

	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"

	dateLayout = "2006-01-02"
)

// ContentType returns the MIME type of format.
func ContentType(format string) string {
	switch strings.ToLower(format) {
	case FormatPDF:
		return "application/pdf"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// BuildStatusPDF renders the fleet maintenance status.
func BuildStatusPDF(fleet *service.FleetStatus) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Robot Fleet Maintenance Status")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", fleet.EvaluatedAt.Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Controllers: %d   OK: %d   Warning: %d   Overdue: %d",
		fleet.Summary.Total, fleet.Summary.OK, fleet.Summary.Warning, fleet.Summary.Overdue))
	pdf.Ln(8)

	for _, cs := range fleet.Controllers {
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 6, fmt.Sprintf("%s (%s / %s)  %s  servo hours %d  overall %s",
			cs.Controller.Name, cs.Controller.Model, cs.Controller.RobotModel,
			cs.Controller.Location, cs.Controller.ServoPowerTime, cs.Overall))
		pdf.Ln(7)

		pdf.CellFormat(70, 6, "Maintenance", "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, "Status", "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, "Target (h)", "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, "Since last (h)", "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, "Remaining (h)", "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, "Last done", "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, "Next due", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
		for _, item := range cs.Items {
			pdf.CellFormat(70, 6, string(item.Name), "1", 0, "L", false, 0, "")
			pdf.CellFormat(25, 6, item.Status.String(), "1", 0, "C", false, 0, "")
			pdf.CellFormat(30, 6, fmt.Sprintf("%d", item.TargetHours), "1", 0, "R", false, 0, "")
			pdf.CellFormat(30, 6, fmt.Sprintf("%d", item.HoursSinceLastMaintenance), "1", 0, "R", false, 0, "")
			pdf.CellFormat(30, 6, fmt.Sprintf("%d", item.Remaining), "1", 0, "R", false, 0, "")
			pdf.CellFormat(30, 6, formatDate(item.LastMaintenanceDate), "1", 0, "C", false, 0, "")
			pdf.CellFormat(30, 6, formatDate(item.NextDue), "1", 0, "C", false, 0, "")
			pdf.Ln(-1)
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildStatusXLSX renders the fleet maintenance status, one row per controller and type.
func BuildStatusXLSX(fleet *service.FleetStatus) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	summarySheet := "summary"
	itemsSheet := "status"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(itemsSheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summarySheet, "A1", "Robot Fleet Maintenance Status")
	_ = f.SetCellValue(summarySheet, "A3", "Generated")
	_ = f.SetCellValue(summarySheet, "B3", fleet.EvaluatedAt.Format(time.RFC3339))
	_ = f.SetCellValue(summarySheet, "A4", "Controllers")
	_ = f.SetCellValue(summarySheet, "B4", fleet.Summary.Total)
	_ = f.SetCellValue(summarySheet, "A5", "OK")
	_ = f.SetCellValue(summarySheet, "B5", fleet.Summary.OK)
	_ = f.SetCellValue(summarySheet, "A6", "Warning")
	_ = f.SetCellValue(summarySheet, "B6", fleet.Summary.Warning)
	_ = f.SetCellValue(summarySheet, "A7", "Overdue")
	_ = f.SetCellValue(summarySheet, "B7", fleet.Summary.Overdue)

	headers := []string{"Controller", "Model", "Robot Model", "Location", "Servo Hours", "Maintenance",
		"Status", "Target (h)", "Since Last (h)", "Remaining (h)", "Percentage", "Last Done", "Next Due"}
	if err := f.SetSheetRow(itemsSheet, "A1", &headers); err != nil {
		return nil, err
	}
	row := 2
	for _, cs := range fleet.Controllers {
		for _, item := range cs.Items {
			values := []interface{}{
				cs.Controller.Name, cs.Controller.Model, cs.Controller.RobotModel, cs.Controller.Location,
				cs.Controller.ServoPowerTime, string(item.Name), item.Status.String(), item.TargetHours,
				item.HoursSinceLastMaintenance, item.Remaining, item.Percentage,
				formatDate(item.LastMaintenanceDate), formatDate(item.NextDue),
			}
			if err := f.SetSheetRow(itemsSheet, fmt.Sprintf("A%d", row), &values); err != nil {
				return nil, err
			}
			row++
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildHistoryPDF renders maintenance history. names maps controller ids to display names.
func BuildHistoryPDF(history []models.MaintenanceRecord, names map[string]string, generated time.Time) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Robot Fleet Maintenance History")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s   Records: %d", generated.Format(time.RFC3339), len(history)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(30, 6, "Date", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, "Controller", "1", 0, "C", false, 0, "")
	pdf.CellFormat(65, 6, "Maintenance", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Servo (h)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Technician", "1", 0, "C", false, 0, "")
	pdf.CellFormat(65, 6, "Notes", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, rec := range sortedHistory(history) {
		pdf.CellFormat(30, 6, rec.MaintenanceDate.Format(dateLayout), "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 6, displayName(names, rec.ControllerID), "1", 0, "L", false, 0, "")
		pdf.CellFormat(65, 6, string(rec.MaintenanceType), "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%d", rec.ServoHours), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, rec.Technician, "1", 0, "L", false, 0, "")
		pdf.CellFormat(65, 6, truncate(rec.Notes, 45), "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildHistoryXLSX renders maintenance history.
func BuildHistoryXLSX(history []models.MaintenanceRecord, names map[string]string, generated time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "history"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headers := []string{"Date", "Controller ID", "Controller", "Maintenance", "Servo Hours", "Technician", "Notes"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, err
	}
	for i, rec := range sortedHistory(history) {
		values := []interface{}{
			rec.MaintenanceDate.Format(dateLayout), rec.ControllerID, displayName(names, rec.ControllerID),
			string(rec.MaintenanceType), rec.ServoHours, rec.Technician, rec.Notes,
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &values); err != nil {
			return nil, err
		}
	}
	_ = f.SetDocProps(&excelize.DocProperties{
		Title:   "Robot Fleet Maintenance History",
		Created: generated.Format(time.RFC3339),
	})

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sortedHistory(history []models.MaintenanceRecord) []models.MaintenanceRecord {
	out := append([]models.MaintenanceRecord(nil), history...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MaintenanceDate.After(out[j].MaintenanceDate)
	})
	return out
}

func displayName(names map[string]string, id string) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return id
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(dateLayout)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
