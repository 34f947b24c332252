package infra

// pdf.go renders the distribution report with go-pdf/fpdf.
// A4 portrait with:
//   - Studio header and date range
//   - Session count and the income/expense/net totals
//   - One row per beneficiary with its share
//
// The output file is saved to storagePath/reporte_{inicio}_{fin}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"estudio/internal/dto"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// GenerateReportePDF renders a distribution report and returns the path of the written file.
// storagePath is created if needed.
func GenerateReportePDF(rep *dto.ReporteDistribucionResponse, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("reporte_%s_%s.pdf", rep.FechaInicio, rep.FechaFin)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, tr("Reporte de distribución"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, fmt.Sprintf("Del %s al %s", rep.FechaInicio, rep.FechaFin), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(contentW, 5, "Generado "+time.Now().Format("02/01/2006 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	labelW := contentW * 0.65
	valueW := contentW * 0.35

	fila := func(label string, monto decimal.Decimal, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(labelW, 7, tr(label), "B", 0, "L", false, 0, "")
		pdf.CellFormat(valueW, 7, "$"+monto.StringFixed(2), "B", 1, "R", false, 0, "")
	}

	// ── Totals ────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 7, tr(fmt.Sprintf("Sesiones activas: %d", rep.Sesiones)), "", 1, "L", false, 0, "")
	pdf.Ln(1)
	fila("Anticipos", rep.TotalAnticipos, false)
	fila("Ingresos totales", rep.TotalIngresos, false)
	fila("Gastos", rep.TotalGastos, false)
	fila("Apartado a caja de ahorro", rep.TotalCajas, false)
	fila("Neto a distribuir", rep.TotalNeto, true)
	pdf.Ln(6)

	// ── Shares ────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 7, tr("Distribución"), "", 1, "L", false, 0, "")
	pdf.Ln(1)
	for _, p := range rep.Distribucion {
		fila(p.Beneficiario, p.Monto, false)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
