package render

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/skillmatch/backend/internal/domain"
)

const (
	chartImageName  = "chart"
	chartImageWidth = 170.0
)

// ReportRenderer lays out the match result and chart as an A4 PDF
type ReportRenderer struct {
	fontFamily string
}

// NewReportRenderer creates a report renderer using the Arial core font
func NewReportRenderer() *ReportRenderer {
	return &ReportRenderer{fontFamily: "Arial"}
}

// RenderReport implements domain.ReportRenderer. A nil chart leaves the image out.
func (r *ReportRenderer) RenderReport(result domain.MatchResult, chartPNG []byte) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont(r.fontFamily, "B", 16)
	pdf.CellFormat(0, 10, fmt.Sprintf("Match Score: %s%%", FormatResultScore(result)), "", 1, "", false, 0, "")

	r.skillSection(pdf, "Matching Skills:", result.Matched)
	pdf.Ln(5)
	r.skillSection(pdf, "Missing Skills:", result.Missing)
	pdf.Ln(10)

	if len(chartPNG) > 0 {
		opt := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(chartImageName, opt, bytes.NewReader(chartPNG))
		pdf.ImageOptions(chartImageName, -1, 0, chartImageWidth, 0, true, opt, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *ReportRenderer) skillSection(pdf *fpdf.Fpdf, heading string, skills []string) {
	pdf.SetFont(r.fontFamily, "B", 14)
	pdf.CellFormat(0, 10, heading, "", 1, "", false, 0, "")
	pdf.SetFont(r.fontFamily, "", 12)
	for _, skill := range skills {
		pdf.CellFormat(0, 8, "- "+skill, "", 1, "", false, 0, "")
	}
}

// FormatResultScore prints the score of result. A target without any skills
// scores a bare 0, since there was nothing to compute a percentage of.
func FormatResultScore(result domain.MatchResult) string {
	if result.MatchedCount()+result.MissingCount() == 0 {
		return "0"
	}
	return FormatScore(result.Score)
}

// FormatScore prints a score the way it is shown to users: always at least
// one decimal place, never trailing zeros beyond it (75.0, 33.33, 66.7).
func FormatScore(score float64) string {
	s := strconv.FormatFloat(score, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
