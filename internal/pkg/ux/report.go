package ux

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/journalstat-dev/journalstat/internal/pkg/stats"
	"github.com/journalstat-dev/journalstat/internal/pkg/timez"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const (
	messageWidthMax = 80
	titleFmt        = "Journal statistics for %s"
	summaryFmt      = "Scanned %d file(s), %d record(s), %d distinct message(s)"
	skippedFmt      = "Skipped %s: %v"
	matchedFmt      = ", %d matched the filter"
)

type ReportT struct {
	Input  string
	Result *stats.Result
}

func NewReport(input string, result *stats.Result) *ReportT {
	return &ReportT{
		Input:  input,
		Result: result,
	}
}

// Render writes the rankings to w. Skipped-file warnings go to errW so a
// redirected stdout stays machine-cleanish.
func (r *ReportT) Render(w, errW io.Writer) {

	title := text.Colors{text.FgHiWhite, text.Bold}
	fmt.Fprintln(w, title.Sprintf(titleFmt, r.Input))

	for _, fe := range r.Result.Errors {
		warn := color.New(color.FgHiYellow)
		warn.Fprintf(errW, skippedFmt+"\n", fe.Path, fe.Err)
	}

	summary := fmt.Sprintf(summaryFmt, r.Result.FilesScanned, r.Result.Records, r.Result.Distinct)
	if r.Result.Matched != r.Result.Records {
		summary += fmt.Sprintf(matchedFmt, r.Result.Matched)
	}
	fmt.Fprintln(w, summary)

	if r.Result.TopTalkers != nil {
		fmt.Fprintln(w)
		r.renderTalkers(w)
	}

	if r.Result.LargeMessages != nil {
		fmt.Fprintln(w)
		r.renderLargest(w)
	}
}

func (r *ReportT) renderTalkers(w io.Writer) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetTitle("Top talkers")
	tw.AppendHeader(table.Row{"#", "Count", "Process", "Message"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Count", Align: text.AlignRight},
		{Name: "Message", WidthMax: messageWidthMax},
	})

	for idx, e := range r.Result.TopTalkers {
		tw.AppendRow(table.Row{idx + 1, e.Count, e.Process, printable(e.Key)})
	}

	tw.Render()
}

func (r *ReportT) renderLargest(w io.Writer) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetTitle("Largest messages")
	tw.AppendHeader(table.Row{"#", "Size", "Time", "Unit", "Message"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Size", Align: text.AlignRight},
		{Name: "Message", WidthMax: messageWidthMax},
	})

	for idx, e := range r.Result.LargeMessages {
		tw.AppendRow(table.Row{idx + 1, e.Size, timez.FormatRealtime(e.Realtime), e.Unit, printable(string(e.Message))})
	}

	tw.Render()
}

// printable makes a journal payload safe for a terminal table. Journal
// fields are arbitrary bytes; control characters would break row layout.
func printable(s string) string {
	s = strings.ToValidUTF8(s, "�")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return ' '
		}
		if unicode.IsControl(r) {
			return '�'
		}
		return r
	}, s)
}
