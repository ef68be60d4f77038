package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"reloadpanel/pkg/core"
)

// LogReport is what the panel knows at the moment the user asks for a report.
type LogReport struct {
	Endpoint    string
	GeneratedAt time.Time
	Status      *core.ServiceStatus
	URLs        []core.MonitoredURL
	Logs        core.LogTail
}

type generator struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

// RenderLogs lays the report out on A4 pages and returns the PDF bytes.
func RenderLogs(r LogReport) ([]byte, error) {
	g := &generator{pdf: gofpdf.New("P", "mm", "A4", "")}
	g.pdf.SetMargins(15, 15, 15)
	g.pdf.SetAutoPageBreak(true, 20)
	g.tr = g.pdf.UnicodeTranslatorFromDescriptor("")
	g.pdf.SetTitle("page-reloader log report", true)
	g.pdf.AddPage()

	g.addHeader(r)
	g.addURLTable(r.URLs)
	g.addLogLines(r.Logs)

	if err := g.pdf.Error(); err != nil {
		return nil, fmt.Errorf("PDF generation error: %w", err)
	}
	var buf bytes.Buffer
	if err := g.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to output PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *generator) addHeader(r LogReport) {
	g.pdf.SetFont("Arial", "B", 20)
	g.pdf.SetTextColor(44, 62, 80)
	g.pdf.CellFormat(0, 12, "Page Reloader Report", "", 1, "C", false, 0, "")

	g.pdf.SetFont("Arial", "", 10)
	g.pdf.SetTextColor(127, 140, 141)
	g.pdf.CellFormat(0, 6, g.tr("Endpoint: "+r.Endpoint), "", 1, "C", false, 0, "")
	g.pdf.CellFormat(0, 6, "Generated on "+r.GeneratedAt.Format("2006-01-02 15:04:05"), "", 1, "C", false, 0, "")

	status := "Service status: unknown"
	if r.Status != nil {
		if r.Status.Running {
			status = "Service status: running"
		} else {
			status = "Service status: stopped"
		}
	}
	g.pdf.SetTextColor(0, 0, 0)
	g.pdf.CellFormat(0, 6, status, "", 1, "C", false, 0, "")
	g.pdf.Ln(6)
}

func (g *generator) addURLTable(urls []core.MonitoredURL) {
	g.section("Monitored URLs")
	if len(urls) == 0 {
		g.pdf.SetFont("Arial", "I", 10)
		g.pdf.SetTextColor(127, 140, 141)
		g.pdf.CellFormat(0, 8, "No URLs configured", "", 1, "L", false, 0, "")
		g.pdf.Ln(4)
		return
	}

	widths := []float64{110, 30, 40}
	g.pdf.SetFont("Arial", "B", 9)
	g.pdf.SetFillColor(231, 243, 250)
	for i, header := range []string{"URL", "Status", "Interval"} {
		g.pdf.CellFormat(widths[i], 7, header, "1", 0, "C", true, 0, "")
	}
	g.pdf.Ln(-1)

	g.pdf.SetFont("Arial", "", 8)
	for i, u := range urls {
		fill := i%2 == 1
		g.pdf.SetFillColor(249, 249, 249)
		interval := core.FormatInterval(u.Interval)
		if u.UsesDefault() {
			interval += " (default)"
		} else {
			interval += " (custom)"
		}
		g.pdf.CellFormat(widths[0], 6, g.tr(truncate(u.URL, 70)), "1", 0, "L", fill, 0, "")
		g.pdf.CellFormat(widths[1], 6, string(u.Status), "1", 0, "C", fill, 0, "")
		g.pdf.CellFormat(widths[2], 6, interval, "1", 1, "C", fill, 0, "")
	}
	g.pdf.Ln(6)
}

func (g *generator) addLogLines(logs core.LogTail) {
	g.section(fmt.Sprintf("Service log (%d lines)", len(logs)))
	g.pdf.SetFont("Courier", "", 8)
	g.pdf.SetTextColor(0, 0, 0)
	if len(logs) == 0 {
		g.pdf.CellFormat(0, 6, "No log entries", "", 1, "L", false, 0, "")
		return
	}
	for _, line := range logs {
		g.pdf.MultiCell(0, 4, g.tr(line), "", "L", false)
	}
}

func (g *generator) section(title string) {
	g.pdf.SetFont("Arial", "B", 14)
	g.pdf.SetTextColor(52, 73, 94)
	g.pdf.CellFormat(0, 9, title, "", 1, "L", false, 0, "")
	g.pdf.Ln(2)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
