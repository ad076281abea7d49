package infra

// pdf.go — close-out (arqueo) report generation using go-pdf/fpdf.
// Produces an A5 report per closed session with:
//   - Register and session identifiers, open/close timestamps
//   - Opening balance, expected vs declared closing balance, discrepancy
//   - The full audit trail for the session (blocked attempts included)
//
// The output file is saved to storagePath/cierre_{sesion}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"cajaledger/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateCierrePDF renders the close-out report for a closed session.
// storagePath is the directory where the PDF will be written (created if
// needed). Returns the absolute path to the generated file.
func GenerateCierrePDF(sesion *model.SesionCaja, registros []model.RegistroAuditoria, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("cierre_%s.pdf", sesion.ID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, "Cierre de Caja", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 6, fmt.Sprintf("Caja %d — Sesion %s", sesion.CajaID, sesion.ID), "", 1, "C", false, 0, "")
	pdf.Ln(2)
	pdf.Line(10, pdf.GetY(), pageW-10, pdf.GetY())
	pdf.Ln(3)

	// ── Session summary ──────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "Apertura: "+sesion.OpenedAt.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	if sesion.ClosedAt != nil {
		pdf.CellFormat(contentW, 5, "Cierre: "+sesion.ClosedAt.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(contentW, 5, "Monto inicial: $ "+sesion.MontoInicial.StringFixed(2), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, "Esperado: $ "+sesion.MontoEsperado.StringFixed(2), "", 1, "L", false, 0, "")
	if sesion.MontoDeclarado != nil {
		pdf.CellFormat(contentW, 6, "Declarado: $ "+sesion.MontoDeclarado.StringFixed(2), "", 1, "L", false, 0, "")
		desvio := sesion.MontoDeclarado.Sub(sesion.MontoEsperado)
		pdf.CellFormat(contentW, 6, "Desvio: $ "+desvio.StringFixed(2), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	// ── Audit trail ──────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	col1 := contentW * 0.30
	col2 := contentW * 0.20
	col3 := contentW * 0.25
	col4 := contentW * 0.25
	pdf.CellFormat(col1, 5, "Fecha", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Modo", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 5, "Desvio", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 5, "Resultado", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	for _, r := range registros {
		pdf.CellFormat(col1, 5, r.CreatedAt.Format("02/01 15:04"), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, r.Modo, "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, "$ "+r.Desvio.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 5, r.Resultado, "", 1, "R", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write %s: %w", filePath, err)
	}
	return filePath, nil
}
