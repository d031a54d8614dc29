package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"stockscore/internal/domain/score"
)

var (
	bullColor = color.New(color.FgGreen, color.Bold)
	holdColor = color.New(color.FgYellow)
	bearColor = color.New(color.FgRed, color.Bold)
	dimColor  = color.New(color.FgHiBlack)
)

func gradeColor(g score.Grade) *color.Color {
	switch g {
	case score.GradeStrongBuy, score.GradeBuy:
		return bullColor
	case score.GradeSell, score.GradeStrongSell:
		return bearColor
	default:
		return holdColor
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeResult prints the category table followed by the headline and narrative
func writeResult(w io.Writer, r *score.AIScoreResult, cached bool) error {
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"Category", "Score", "Metrics", "Detail"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.PerColumn = []tw.Align{tw.AlignLeft, tw.AlignRight, tw.AlignRight, tw.AlignLeft}
	})

	var rows [][]string
	for _, cat := range score.Categories {
		res := r.Breakdown[cat]
		rows = append(rows, []string{
			string(cat),
			strconv.Itoa(res.Score),
			fmt.Sprintf("%d/%d", res.AvailableMetrics, res.TotalMetrics),
			metricSummary(res),
		})
	}
	if err := table.Bulk(rows); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	source := "computed"
	if cached {
		source = "cached"
	}

	fmt.Fprintf(w, "\n%s  %d/100  %s  %s\n", r.Ticker, r.Score,
		gradeColor(r.Grade).Sprint(r.Grade), r.Classification)
	fmt.Fprintf(w, "Confidence %d%%  %s\n", r.Confidence,
		dimColor.Sprintf("(%s %s)", source, humanize.Time(r.Timestamp)))

	if len(r.RiskFactors) > 0 {
		fmt.Fprintln(w, "\nRisk factors:")
		for _, rf := range r.RiskFactors {
			fmt.Fprintf(w, "  - %s\n", rf)
		}
	}

	fmt.Fprintf(w, "\nShort term: %s\nLong term:  %s\n", r.ShortTermOutlook, r.LongTermOutlook)
	fmt.Fprintf(w, "\n%s\n", r.Reasoning)
	return nil
}

// metricSummary lists the available sub-metrics as label=value
func metricSummary(res score.CategoryResult) string {
	parts := make([]string, 0, len(res.Metrics))
	for _, m := range res.Metrics {
		if m.Value == nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%v", m.Label, m.Value))
	}
	if len(parts) == 0 {
		return dimColor.Sprint("no data")
	}
	return strings.Join(parts, ", ")
}

// writeHistory prints one row per logged score
func writeHistory(w io.Writer, ticker string, results []score.AIScoreResult) error {
	if len(results) == 0 {
		_, err := fmt.Fprintf(w, "No scores logged for %s\n", ticker)
		return err
	}

	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"When", "Score", "Grade", "Classification", "Confidence"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.PerColumn = []tw.Align{tw.AlignLeft, tw.AlignRight, tw.AlignLeft, tw.AlignLeft, tw.AlignRight}
	})

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			humanize.Time(r.Timestamp),
			strconv.Itoa(r.Score),
			gradeColor(r.Grade).Sprint(r.Grade),
			string(r.Classification),
			fmt.Sprintf("%d%%", r.Confidence),
		})
	}
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}
