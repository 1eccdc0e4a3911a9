package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/lamim/contentforge/internal/orchestrator"
	"github.com/lamim/contentforge/internal/parser"
	"github.com/lamim/contentforge/internal/progress"
	"github.com/lamim/contentforge/internal/util"
	"github.com/lamim/contentforge/pkg/models"
)

func isTerminal(file *os.File) bool {
	if file == nil {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func newTable(headers ...string) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)
	return tw
}

// renderDraftSummary shows draft metadata and a kind x level count table
func renderDraftSummary(draft *models.Draft) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Draft:    %s\n", draft.ID)
	fmt.Fprintf(&sb, "Entity:   %s %q\n", draft.Request.EntityType.Title(), draft.Request.Title)
	fmt.Fprintf(&sb, "Status:   %s (%d attempt(s))\n", draft.Status, draft.Attempts)
	fmt.Fprintf(&sb, "Summary:  %s\n", yesNo(draft.Content.HasSummary()))

	tw := newTable("Kind", "Level", "Sets", "Questions", "Requested")
	sets, questions := 0, 0
	for _, kind := range models.Kinds {
		configs := draft.Request.LevelConfigs(kind)
		for _, l := range models.Levels {
			s := draft.Content.SetCount(kind, l)
			q := draft.Content.QuestionCount(kind, l)
			lc := configs[l]
			tw.AppendRow(table.Row{
				kind,
				fmt.Sprintf("%s %s", l, l.Difficulty()),
				s,
				q,
				fmt.Sprintf("%d x %d", lc.Sets, lc.QuestionsPerSet),
			})
			sets += s
			questions += q
		}
	}
	tw.AppendFooter(table.Row{"Total", "", sets, questions, ""})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	sb.WriteString(tw.Render())

	if problems := draft.Content.Problems(); len(problems) > 0 {
		fmt.Fprintf(&sb, "\n%d problem(s) found:\n", len(problems))
		for _, p := range problems {
			fmt.Fprintf(&sb, "  - %s\n", p)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// renderContent renders the full formatted content of a draft
func renderContent(draft *models.Draft) string {
	return parser.Format(draft.Content)
}

// renderReport shows one row per persistence step
func renderReport(report *orchestrator.Report) string {
	tw := newTable("#", "Step", "Kind", "Level", "Set", "Items", "Status", "Error")
	for i, r := range report.Results {
		tw.AppendRow(table.Row{
			i + 1,
			r.Node,
			r.Kind,
			r.Level,
			r.SetName,
			strconv.Itoa(r.Items),
			r.Status,
			util.TruncateString(r.Error, 60),
		})
	}
	tw.AppendFooter(table.Row{"", "", "", "", "Saved",
		fmt.Sprintf("%d/%d", report.Progress.Current, report.Progress.Total), "", ""})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	return tw.Render()
}

// newProgressObserver renders persistence progress as a bar on a terminal
// and as log lines otherwise. done must be called once persistence returns.
func newProgressObserver(logger *slog.Logger) (observer progress.Observer, done func()) {
	if !isTerminal(os.Stderr) {
		return func(p models.SaveProgress) {
			logger.Info("Persistence progress",
				"current", p.Current,
				"total", p.Total,
				"status", p.Status)
		}, func() {}
	}

	var bar *progressbar.ProgressBar
	observer = func(p models.SaveProgress) {
		if p.Total == 0 {
			return
		}
		if bar == nil {
			bar = progressbar.NewOptions(p.Total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionSetDescription("Saving"),
				progressbar.OptionShowCount(),
				progressbar.OptionSetPredictTime(false),
				progressbar.OptionFullWidth())
		}
		bar.Describe(p.Status)
		_ = bar.Set(p.Current)
	}
	done = func() {
		if bar != nil {
			fmt.Fprintln(os.Stderr)
		}
	}
	return observer, done
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

