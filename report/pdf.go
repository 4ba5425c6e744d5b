package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// SaveSessionPDF renders the session summary into a PDF document at out.
func SaveSessionPDF(s Session, out string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Session Report", false)
	pdf.SetCreator("ldctl", false)
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	addPDFTitle(pdf, "Session Report")
	addSessionSection(pdf, s)
	addChannelTable(pdf, s.Channels)
	addDigestSection(pdf, s.Digest)

	if pdf.Err() {
		return pdf.Error()
	}
	return pdf.OutputFileAndClose(out)
}

func addPDFTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)
}

func addSessionSection(pdf *gofpdf.Fpdf, s Session) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Session")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	items := []struct {
		label string
		value string
	}{
		{label: "Device", value: fmt.Sprintf("%s (serial %d)", emptyFallback(s.Device, "-"), s.Serial)},
		{label: "Date", value: emptyFallback(strings.TrimSpace(s.Date+" "+s.Time), "-")},
		{label: "Driver", value: emptyFallback(s.Driver, "-")},
		{label: "Vehicle", value: emptyFallback(s.VehicleID, "-")},
		{label: "Venue", value: emptyFallback(s.Venue, "-")},
		{label: "Session", value: emptyFallback(s.Session, "-")},
		{label: "Event", value: emptyFallback(s.EventName, "-")},
		{label: "Comment", value: emptyFallback(s.Comment, "-")},
	}
	for _, item := range items {
		pdf.CellFormat(50, 6, item.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, item.value, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func addChannelTable(pdf *gofpdf.Fpdf, channels []ChannelSummary) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Channels")
	pdf.Ln(9)

	headers := []string{"Name", "Unit", "Type", "Rate", "Samples", "Min", "Max", "Mean"}
	widths := []float64{50, 16, 18, 16, 20, 20, 20, 20}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, ch := range channels {
		values := []string{
			ch.Name,
			emptyFallback(ch.Unit, "-"),
			ch.Datatype,
			strconv.Itoa(int(ch.Rate)),
			strconv.Itoa(ch.Samples),
			formatValue(ch.Min, ch.Samples),
			formatValue(ch.Max, ch.Samples),
			formatValue(ch.Mean, ch.Samples),
		}
		for i, v := range values {
			pdf.CellFormat(widths[i], 6, v, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)
}

func addDigestSection(pdf *gofpdf.Fpdf, digest string) {
	if digest == "" {
		return
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Source")
	pdf.Ln(9)

	pdf.SetFont("Courier", "", 8)
	pdf.MultiCell(0, 4, digest, "", "L", false)
	pdf.Ln(2)

	png, err := digestQR(digest, 128)
	if err != nil {
		pdf.SetError(err)
		return
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("source-digest", opts, bytes.NewReader(png))
	pdf.ImageOptions("source-digest", 15, pdf.GetY(), 30, 30, false, opts, 0, "")
}

func emptyFallback(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func formatValue(v float64, samples int) string {
	if samples == 0 {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
