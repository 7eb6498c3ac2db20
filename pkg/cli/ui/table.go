package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/ishuide/Car-price-prediction/pkg/data"
)

// RenderFrame draws df as a bordered table. Float cells are shortened and
// missing cells shown as "-".
func RenderFrame(df dataframe.DataFrame) string {
	if df.Err != nil {
		return df.Err.Error()
	}
	if df.Nrow() == 0 {
		return Styles.Border.Render("No rows found")
	}
	return RenderTable(df.Names(), frameRows(df))
}

func frameRows(df dataframe.DataFrame) [][]string {
	types := df.Types()
	rows := make([][]string, df.Nrow())
	for r := range rows {
		row := make([]string, df.Ncol())
		for c := range row {
			e := df.Elem(r, c)
			switch {
			case e.IsNA():
				row[c] = "-"
			case types[c] == series.Float:
				row[c] = data.FormatFloat(e.Float())
			default:
				row[c] = e.String()
			}
		}
		rows[r] = row
	}
	return rows
}

// RenderTable draws headers and rows with the CLI table style.
func RenderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(Styles.Border).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return Styles.Header
			}
			return Styles.Cell
		}).
		Headers(headers...).
		Rows(rows...)
	return t.Render()
}

// PrintFrame prints df as a table followed by a row count.
func PrintFrame(df dataframe.DataFrame, total int) {
	fmt.Fprintln(Out, RenderFrame(df))
	if total > df.Nrow() {
		PrintInfo("showing %d of %d rows", df.Nrow(), total)
	} else {
		PrintInfo("%d rows", total)
	}
}
