package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"mailtriage/internal/model"
)

// DefaultResponseWidth truncates the response column of the table.
const DefaultResponseWidth = 60

var columns = []string{"id", "email_id", "success", "classification", "response_sent"}

// Summary counts outcomes.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
}

func Summarize(outcomes []model.Outcome) Summary {
	s := Summary{Total: len(outcomes)}
	for _, o := range outcomes {
		if o.Success {
			s.Succeeded++
		} else {
			s.Failed++
		}
	}
	return s
}

// WriteTable prints one row per outcome in input order. Failed rows leave
// the category and response cells empty. width <= 0 disables truncation.
func WriteTable(w io.Writer, outcomes []model.Outcome, width int) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	if _, err := fmt.Fprintln(tw, strings.Join(columns, "\t")); err != nil {
		return err
	}
	for _, o := range outcomes {
		row := []string{
			cell(o.ID),
			cell(o.Sender),
			strconv.FormatBool(o.Success),
			cell(string(o.Category)),
			truncate(cell(o.Response), width),
		}
		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	s := Summarize(outcomes)
	_, err := fmt.Fprintf(w, "\n%d processed, %d succeeded, %d failed\n", s.Total, s.Succeeded, s.Failed)
	return err
}

// WriteJSON prints the outcomes as a JSON array.
func WriteJSON(w io.Writer, outcomes []model.Outcome) error {
	if outcomes == nil {
		outcomes = []model.Outcome{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(outcomes)
}

// cell flattens whitespace so a value stays on one table row.
func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}
