package infra

// pdf.go: bill-of-materials cost sheet for one product, using go-pdf/fpdf.
// Layout: business header, product + presentation, ingredient table
// (material, quantity per unit, unit cost, line cost), total unit cost and
// margin against the sale price. Written to storagePath/ficha_<id>.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/crisgp1/orodetamar-sub000/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// GenerarFichaReceta writes the cost sheet and returns the file path.
func GenerarFichaReceta(negocio string, p *model.Producto, lineas []model.Receta, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(storagePath, fmt.Sprintf("ficha_%d.pdf", p.ID))

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, tr(negocio), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, tr("Ficha de receta y costo"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 6, tr(fmt.Sprintf("%s - %s", p.Nombre, p.Presentacion)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "Generado: "+time.Now().Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	cols := []float64{contentW * 0.40, contentW * 0.20, contentW * 0.20, contentW * 0.20}
	pdf.SetFont("Helvetica", "B", 9)
	for i, h := range []string{"Materia prima", "Cant./unidad", "Costo unit.", "Costo"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(cols[i], 6, tr(h), "B", 0, align, false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	costoTotal := decimal.Zero
	for _, l := range lineas {
		nombre, costoUnit := "", decimal.Zero
		if l.MateriaPrima != nil {
			nombre = l.MateriaPrima.Nombre
			costoUnit = l.MateriaPrima.CostoUnitario
		}
		costo := l.CantidadPorUnidad.Mul(costoUnit)
		costoTotal = costoTotal.Add(costo)

		pdf.CellFormat(cols[0], 5, tr(nombre), "", 0, "L", false, 0, "")
		pdf.CellFormat(cols[1], 5, l.CantidadPorUnidad.String()+" "+l.UnidadMedida, "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[2], 5, "$"+costoUnit.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[3], 5, "$"+costo.StringFixed(2), "", 1, "R", false, 0, "")
	}
	if len(lineas) == 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(contentW, 5, tr("Producto sin receta"), "", 1, "L", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(cols[0]+cols[1]+cols[2], 6, "Costo por unidad:", "", 0, "L", false, 0, "")
	pdf.CellFormat(cols[3], 6, "$"+costoTotal.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(cols[0]+cols[1]+cols[2], 6, "Precio de venta:", "", 0, "L", false, 0, "")
	pdf.CellFormat(cols[3], 6, "$"+p.PrecioVenta.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.CellFormat(cols[0]+cols[1]+cols[2], 6, "Margen:", "", 0, "L", false, 0, "")
	pdf.CellFormat(cols[3], 6, "$"+p.PrecioVenta.Sub(costoTotal).StringFixed(2), "", 1, "R", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
