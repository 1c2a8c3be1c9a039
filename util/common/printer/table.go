// Package printer renders command output: styled tables for terminals and
// JSON for scripting.
package printer

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog/log"

	"github.com/skillmeat/skillmeat-cli/internal/style"
)

// Table renders headers and rows using the project's colour theme. When
// styling is disabled it falls back to a plain pterm table.
func Table(headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Println(style.DimText.Render("(nothing to show)"))
		return
	}

	if !style.Enabled {
		data := pterm.TableData{headers}
		data = append(data, rows...)
		if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
			log.Debug().Err(err).Msg("Table render failed")
		}
		return
	}

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(style.Amber).
		Padding(0, 1)
	cellStyle := lipgloss.NewStyle().
		Foreground(style.White).
		Padding(0, 1)
	dimCellStyle := lipgloss.NewStyle().
		Foreground(style.Dim).
		Padding(0, 1)

	t := lgtable.New().
		Headers(headers...).
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(style.Subtle)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == lgtable.HeaderRow {
				return headerStyle
			}
			if row%2 == 0 {
				return cellStyle
			}
			return dimCellStyle
		}).
		Rows(rows...)

	fmt.Println(t)
}

// JSON writes v as indented JSON to stdout.
func JSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
