package report

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/rustyeddy/lotsizer/journal"
	"github.com/rustyeddy/lotsizer/replay"
)

const (
	StepsSheet   = "Steps"
	SummarySheet = "Summary"
	OrdersSheet  = "Orders"
)

type styles struct {
	header int
	money  int
	lots   int
}

func newStyles(fx *excelize.File) (styles, error) {
	var (
		s   styles
		err error
	)
	border := []excelize.Border{
		{Type: "left", Color: "E0E0E0", Style: 1},
		{Type: "right", Color: "E0E0E0", Style: 1},
		{Type: "bottom", Color: "E0E0E0", Style: 1},
	}

	s.header, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"2F4F4F"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return s, err
	}

	// 4: #,##0.00
	s.money, err = fx.NewStyle(&excelize.Style{
		NumFmt:    4,
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    border,
	})
	if err != nil {
		return s, err
	}

	lotsFmt := "0.00######"
	s.lots, err = fx.NewStyle(&excelize.Style{
		CustomNumFmt: &lotsFmt,
		Alignment:    &excelize.Alignment{Horizontal: "right"},
		Border:       border,
	})
	return s, err
}

// WriteReplayXLSX writes the replay steps and summary to a workbook.
func WriteReplayXLSX(path string, steps []replay.Step, sum replay.Summary) error {
	fx, st, err := newWorkbook(path, StepsSheet)
	if err != nil {
		return err
	}
	defer fx.Close()

	header := []string{"#", "Time", "Strategy", "Symbol", "Side", "Open", "Stop", "Exit",
		"Loss Streak", "Effective", "Coefficient", "Scaled Risk", "Risk / Lot", "Lots", "P/L", "Outcome", "Order ID"}
	if err := writeHeader(fx, StepsSheet, header, st); err != nil {
		return err
	}

	for i, s := range steps {
		row := i + 2
		values := []any{
			i + 1,
			s.Signal.Time.UTC(),
			s.Signal.Strategy,
			s.Signal.Symbol,
			s.Signal.Side.String(),
			s.Order.OpenPrice,
			s.Signal.Stop,
			s.Order.ClosePrice,
			s.Decision.LossCount,
			s.Decision.EffectiveCount,
			s.Decision.Coefficient,
			s.Decision.ScaledRisk,
			s.Decision.RiskPerLot,
			s.Decision.Lots,
			s.Order.RealizedPL,
			string(s.Decision.Outcome),
			s.Order.ID,
		}
		if err := writeRow(fx, StepsSheet, row, values); err != nil {
			return err
		}
		if err := styleCells(fx, StepsSheet, row, map[int]int{12: st.money, 13: st.money, 14: st.lots, 15: st.money}); err != nil {
			return err
		}
	}
	_ = fx.SetColWidth(StepsSheet, "B", "B", 20)
	_ = fx.SetColWidth(StepsSheet, "Q", "Q", 30)

	if _, err := fx.NewSheet(SummarySheet); err != nil {
		return err
	}
	if err := writeHeader(fx, SummarySheet, []string{"Metric", "Value"}, st); err != nil {
		return err
	}
	rows := [][]any{
		{"Start", sum.Start.UTC()},
		{"End", sum.End.UTC()},
		{"Trades", sum.Trades},
		{"Wins", sum.Wins},
		{"Losses", sum.Losses},
		{"Breakeven", sum.Breakeven},
		{"Longest Loss Streak", sum.LongestRun},
		{"Peak Lots", sum.PeakLots},
		{"Net P/L", sum.NetPL},
	}
	for _, n := range sum.Notes {
		rows = append(rows, []any{"Note", n})
	}
	for i, r := range rows {
		if err := writeRow(fx, SummarySheet, i+2, r); err != nil {
			return err
		}
	}
	_ = fx.SetColWidth(SummarySheet, "A", "A", 22)
	_ = fx.SetColWidth(SummarySheet, "B", "B", 60)

	return fx.SaveAs(path)
}

// WriteOrdersXLSX writes journal records to a single sheet workbook.
func WriteOrdersXLSX(path string, recs []journal.OrderRecord) error {
	fx, st, err := newWorkbook(path, OrdersSheet)
	if err != nil {
		return err
	}
	defer fx.Close()

	header := []string{"Order ID", "Strategy", "Symbol", "Side", "Size", "Open", "Close", "Open Time", "Close Time", "P/L", "Reason"}
	if err := writeHeader(fx, OrdersSheet, header, st); err != nil {
		return err
	}
	for i, r := range recs {
		row := i + 2
		values := []any{
			r.ID, r.Strategy, r.Symbol, r.Side.String(), r.Size,
			r.OpenPrice, r.ClosePrice, r.OpenTime.UTC(), r.CloseTime.UTC(),
			r.RealizedPL, r.Reason,
		}
		if err := writeRow(fx, OrdersSheet, row, values); err != nil {
			return err
		}
		if err := styleCells(fx, OrdersSheet, row, map[int]int{5: st.lots, 10: st.money}); err != nil {
			return err
		}
	}
	_ = fx.SetColWidth(OrdersSheet, "A", "A", 30)
	_ = fx.SetColWidth(OrdersSheet, "H", "I", 20)

	return fx.SaveAs(path)
}

func newWorkbook(path, first string) (*excelize.File, styles, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, styles{}, errors.Wrapf(err, "create directory %s", dir)
		}
	}

	fx := excelize.NewFile()
	if err := fx.SetSheetName(fx.GetSheetName(0), first); err != nil {
		_ = fx.Close()
		return nil, styles{}, err
	}
	st, err := newStyles(fx)
	if err != nil {
		_ = fx.Close()
		return nil, styles{}, err
	}
	return fx, st, nil
}

func writeHeader(fx *excelize.File, sheet string, header []string, st styles) error {
	for i, h := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := fx.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		if err := fx.SetCellStyle(sheet, cell, cell, st.header); err != nil {
			return err
		}
	}
	return fx.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeRow(fx *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return fx.SetSheetRow(sheet, cell, &values)
}

// styleCells applies per column styles; cols are 1-based.
func styleCells(fx *excelize.File, sheet string, row int, cols map[int]int) error {
	for col, style := range cols {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		if err := fx.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
	}
	return nil
}
