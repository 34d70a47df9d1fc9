// Package certificate renders the exam result document handed to trainees
// after submission.
package certificate

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/techops-academy/certifier/internal/i18n"
	"github.com/techops-academy/certifier/internal/model"
)

// Brand palette.
var (
	purple  = [3]int{71, 29, 110}
	magenta = [3]int{195, 30, 115}
	green   = [3]int{212, 237, 218}
	red     = [3]int{248, 215, 218}
)

// Render produces the result PDF for one stored attempt. The context carries
// the localizer that picks the document language.
func Render(ctx context.Context, a model.ExamAttempt) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	// Hungarian diacritics need the central European code page.
	tr := pdf.UnicodeTranslatorFromDescriptor("cp1250")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	header(pdf, tr, ctx, a.ExamType)
	resultBadge(pdf, tr, ctx, a.Passed)
	infoBox(pdf, tr, ctx, a)

	stageHeading(pdf, tr, i18n.T(ctx, "TheoryDetails"))
	scoreLine(pdf, tr, ctx, a.TheoryPercent)
	theoryTable(pdf, tr, ctx, a.Result.TheoryAnswers)

	stageHeading(pdf, tr, i18n.T(ctx, "SimulationDetails"))
	scoreLine(pdf, tr, ctx, a.SimulationPercent)
	simulationTable(pdf, tr, ctx, a.Result.SimulationAnswers)

	footer(pdf, tr, ctx)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render certificate: %w", err)
	}
	return buf.Bytes(), nil
}

func header(pdf *fpdf.Fpdf, tr func(string) string, ctx context.Context, examType string) {
	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetTextColor(purple[0], purple[1], purple[2])
	pdf.CellFormat(0, 12, tr(i18n.T(ctx, "CertTitle")), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(magenta[0], magenta[1], magenta[2])
	subtitle := i18n.Td(ctx, "CertSubtitle", map[string]any{"Track": examType})
	pdf.CellFormat(0, 8, tr(subtitle), "", 1, "C", false, 0, "")

	pdf.SetDrawColor(magenta[0], magenta[1], magenta[2])
	pdf.SetLineWidth(0.8)
	pdf.Line(15, pdf.GetY()+2, 195, pdf.GetY()+2)
	pdf.Ln(8)
}

func resultBadge(pdf *fpdf.Fpdf, tr func(string) string, ctx context.Context, passed bool) {
	label := i18n.T(ctx, "ResultFailed")
	fill := red
	if passed {
		label = i18n.T(ctx, "ResultPassed")
		fill = green
	}
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetFillColor(fill[0], fill[1], fill[2])
	pdf.SetTextColor(51, 51, 51)
	pdf.CellFormat(0, 14, tr(label), "1", 1, "C", true, 0, "")
	pdf.Ln(4)
}

func infoBox(pdf *fpdf.Fpdf, tr func(string) string, ctx context.Context, a model.ExamAttempt) {
	rows := []struct{ key, value string }{
		{"LabelName", a.Result.TraineeName},
		{"LabelEmail", a.Result.TraineeEmail},
		{"LabelExamDate", a.FinishedAt.Format("2006-01-02 15:04")},
		{"LabelExamType", a.ExamType},
		{"LabelAttempt", fmt.Sprintf("#%d", a.AttemptNo)},
	}
	pdf.SetFillColor(248, 249, 250)
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetTextColor(51, 51, 51)
		pdf.CellFormat(40, 7, tr(i18n.T(ctx, row.key)+":"), "1", 0, "L", true, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 7, tr(row.value), "1", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func stageHeading(pdf *fpdf.Fpdf, tr func(string) string, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetTextColor(purple[0], purple[1], purple[2])
	pdf.CellFormat(0, 9, tr(title), "B", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func scoreLine(pdf *fpdf.Fpdf, tr func(string) string, ctx context.Context, percent int) {
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(51, 51, 51)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s: %d%%", i18n.T(ctx, "LabelScore"), percent)), "", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func theoryTable(pdf *fpdf.Fpdf, tr func(string) string, ctx context.Context, answers []model.AnswerRecord) {
	if len(answers) == 0 {
		noDetails(pdf, tr, ctx)
		return
	}
	tableHeader(pdf, tr, purple, []col{
		{10, "#"},
		{135, i18n.T(ctx, "ColQuestion")},
		{35, i18n.T(ctx, "ColResult")},
	})
	pdf.SetFont("Helvetica", "", 9)
	for _, a := range answers {
		setRowFill(pdf, a.Correct)
		pdf.CellFormat(10, 6, fmt.Sprintf("%d", a.Index), "1", 0, "C", true, 0, "")
		pdf.CellFormat(135, 6, tr(truncate(a.Question, 90)), "1", 0, "L", true, 0, "")
		pdf.CellFormat(35, 6, tr(resultLabel(ctx, a.Correct)), "1", 1, "C", true, 0, "")
	}
	pdf.Ln(4)
}

func simulationTable(pdf *fpdf.Fpdf, tr func(string) string, ctx context.Context, decisions []model.DecisionRecord) {
	if len(decisions) == 0 {
		noDetails(pdf, tr, ctx)
		return
	}
	tableHeader(pdf, tr, magenta, []col{
		{10, "#"},
		{100, i18n.T(ctx, "ColCase")},
		{35, i18n.T(ctx, "ColAnswer")},
		{35, i18n.T(ctx, "ColResult")},
	})
	pdf.SetFont("Helvetica", "", 9)
	for _, d := range decisions {
		setRowFill(pdf, d.Correct)
		pdf.CellFormat(10, 6, fmt.Sprintf("%d", d.Index), "1", 0, "C", true, 0, "")
		pdf.CellFormat(100, 6, tr(truncate(d.Title, 60)), "1", 0, "L", true, 0, "")
		pdf.CellFormat(35, 6, tr(decisionLabel(ctx, d.Selected)), "1", 0, "C", true, 0, "")
		pdf.CellFormat(35, 6, tr(resultLabel(ctx, d.Correct)), "1", 1, "C", true, 0, "")
	}
	pdf.Ln(4)
}

type col struct {
	width float64
	title string
}

func tableHeader(pdf *fpdf.Fpdf, tr func(string) string, color [3]int, cols []col) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(color[0], color[1], color[2])
	pdf.SetTextColor(255, 255, 255)
	for i, c := range cols {
		ln := 0
		if i == len(cols)-1 {
			ln = 1
		}
		pdf.CellFormat(c.width, 7, tr(c.title), "1", ln, "C", true, 0, "")
	}
	pdf.SetTextColor(51, 51, 51)
}

func setRowFill(pdf *fpdf.Fpdf, correct bool) {
	if correct {
		pdf.SetFillColor(green[0], green[1], green[2])
	} else {
		pdf.SetFillColor(red[0], red[1], red[2])
	}
}

func noDetails(pdf *fpdf.Fpdf, tr func(string) string, ctx context.Context) {
	pdf.SetFont("Helvetica", "I", 10)
	pdf.SetTextColor(136, 136, 136)
	pdf.CellFormat(0, 6, tr(i18n.T(ctx, "NoDetails")), "", 1, "L", false, 0, "")
	pdf.SetTextColor(51, 51, 51)
	pdf.Ln(4)
}

func footer(pdf *fpdf.Fpdf, tr func(string) string, ctx context.Context) {
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(136, 136, 136)
	pdf.CellFormat(0, 5, tr(i18n.T(ctx, "FooterGenerated")), "T", 1, "C", false, 0, "")
}

func resultLabel(ctx context.Context, correct bool) string {
	if correct {
		return i18n.T(ctx, "AnswerCorrect")
	}
	return i18n.T(ctx, "AnswerWrong")
}

func decisionLabel(ctx context.Context, d model.SimulationDecision) string {
	if d == model.DecisionAccept {
		return i18n.T(ctx, "DecisionAccept")
	}
	return i18n.T(ctx, "DecisionDeny")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
