package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/2beens/gymlog/internal/gymlog"
	"github.com/2beens/gymlog/internal/gymlog/dom"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"golang.org/x/net/html"
)

func printRows(w io.Writer, rows []gymlog.WorkoutRow) {
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(
		bold.Sprint("Date"),
		bold.Sprint("Muscle group"),
		bold.Sprint("Exercise"),
		bold.Sprint("Sets"),
		bold.Sprint("Reps"),
		bold.Sprint("Weight"),
		bold.Sprint("Intensity"),
	)
	for _, r := range rows {
		tbl.AddRow(r.Date, r.MuscleGroup, r.Exercise, r.Sets, r.Reps, r.Weight, r.Intensity)
	}

	_, _ = fmt.Fprintln(w, tbl)
	_, _ = fmt.Fprintln(w, color.New(color.Faint).Sprintf("%d rows", len(rows)))
}

// printModal prints the modal content as text: headings and paragraphs on
// their own lines, tables through uitable.
func printModal(w io.Writer, modalHTML string) {
	doc, err := dom.ParseFragment(modalHTML)
	if err != nil {
		_, _ = fmt.Fprintln(w, modalHTML)
		return
	}

	for c := doc.Root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "h3":
			_, _ = fmt.Fprintln(w, color.New(color.Bold, color.Underline).Sprint(dom.Text(c)))
		case "table":
			printTable(w, c)
		default:
			if text := strings.TrimSpace(dom.Text(c)); text != "" {
				_, _ = fmt.Fprintln(w, text)
			}
		}
	}
}

func printTable(w io.Writer, table *html.Node) {
	tbl := uitable.New()
	tbl.Separator = "  "
	for _, tr := range dom.FindAll(table, dom.ByTag("tr")) {
		var cells []interface{}
		for _, cell := range dom.FindAll(tr, isCell) {
			text := strings.TrimSpace(dom.Text(cell))
			if cell.Data == "th" {
				text = color.New(color.Bold).Sprint(text)
			}
			cells = append(cells, text)
		}
		tbl.AddRow(cells...)
	}
	_, _ = fmt.Fprintln(w, tbl)
}

func isCell(n *html.Node) bool {
	return n.Type == html.ElementNode && (n.Data == "th" || n.Data == "td")
}
