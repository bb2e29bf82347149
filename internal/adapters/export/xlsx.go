// Package export renders analysis reports as spreadsheet workbooks.
package export

import (
	"fmt"
	"io"

	service "github.com/okian/kiosk-analytics/internal/app"
	"github.com/xuri/excelize/v2"
)

// ContentType is the media type of a rendered workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet names, in workbook order.
const (
	SheetSummary      = "Summary"
	SheetTopVolume    = "Top Users (Volume)"
	SheetTopFrequency = "Top Users (Frequency)"
	SheetDistribution = "Volume Distribution"
	SheetActivity     = "Kiosk Activity"
	SheetFiles        = "Files"

	defaultSheet = "Sheet1"
)

// Workbook builds the workbook for rep. The caller must Close it.
func Workbook(rep *service.AnalysisReport) (*excelize.File, error) {
	if rep == nil {
		return nil, ErrNilReport
	}
	f := excelize.NewFile()
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}

	w := &writer{f: f, header: bold}
	s := rep.Summary
	w.sheet(SheetSummary, []any{"Metric", "Value"}, [][]any{
		{"Total transactions", s.TotalTransactions},
		{"Unique users", s.UniqueUsers},
		{"Total volume (ml)", s.TotalVolume},
		{"Success rate (%)", s.SuccessRate},
		{"Pass", s.PassCount},
		{"Fail", s.FailCount},
		{"Rejected rows", s.RejectedRows},
		{"Unattributed transactions", s.UnattributedTransactions},
		{"Average volume per user (ml)", s.AverageVolume},
		{"Average accesses per user", s.AverageAccessCount},
	})
	w.sheet(SheetTopVolume, []any{"Rank", "User", "Volume (ml)"}, rankedRows(rep.TopUsersByVolume))
	w.sheet(SheetTopFrequency, []any{"Rank", "User", "Accesses"}, rankedRows(rep.TopUsersByFrequency))

	dist := make([][]any, len(rep.VolumeDistribution))
	for i, b := range rep.VolumeDistribution {
		dist[i] = []any{b.Range, b.Count}
	}
	w.sheet(SheetDistribution, []any{"Range", "Transactions"}, dist)
	w.sheet(SheetActivity, []any{"Rank", "Client", "Transactions"}, rankedRows(rep.KioskActivity))

	files := make([][]any, 0, len(rep.FilesProcessed)+len(rep.FilesSkipped))
	for _, name := range rep.FilesProcessed {
		files = append(files, []any{name, "processed"})
	}
	for _, sk := range rep.FilesSkipped {
		files = append(files, []any{sk.File, sk.Reason})
	}
	w.sheet(SheetFiles, []any{"File", "Status"}, files)

	if w.err == nil {
		w.err = f.DeleteSheet(defaultSheet)
	}
	if w.err == nil {
		if idx, err := f.GetSheetIndex(SheetSummary); err == nil {
			f.SetActiveSheet(idx)
		}
	}
	if w.err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %w", ErrRender, w.err)
	}
	return f, nil
}

// Write renders rep as an XLSX workbook into out.
func Write(out io.Writer, rep *service.AnalysisReport) error {
	f, err := Workbook(rep)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	if err := f.Write(out); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	return nil
}

func rankedRows(s service.Series) [][]any {
	rows := make([][]any, len(s.Labels))
	for i, label := range s.Labels {
		var v float64
		if i < len(s.Data) {
			v = s.Data[i]
		}
		rows[i] = []any{i + 1, label, v}
	}
	return rows
}

// writer keeps the first error so sheet building reads straight through.
type writer struct {
	f      *excelize.File
	header int
	err    error
}

func (w *writer) sheet(name string, header []any, rows [][]any) {
	if w.err != nil {
		return
	}
	if _, w.err = w.f.NewSheet(name); w.err != nil {
		return
	}
	if w.err = w.f.SetSheetRow(name, "A1", &header); w.err != nil {
		return
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		w.err = err
		return
	}
	if w.err = w.f.SetCellStyle(name, "A1", last, w.header); w.err != nil {
		return
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			w.err = err
			return
		}
		if w.err = w.f.SetSheetRow(name, cell, &row); w.err != nil {
			return
		}
	}
	lastCol, _, err := excelize.SplitCellName(last)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetColWidth(name, "A", lastCol, 24)
}
