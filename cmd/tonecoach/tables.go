package main

import (
	"strconv"
	"time"

	"mercator-hq/tonecoach/pkg/cli"
	"mercator-hq/tonecoach/pkg/mail"
	"mercator-hq/tonecoach/pkg/usage"
)

// threadTable renders a thread listing.
type threadTable []mail.ThreadSummary

var _ cli.Table = threadTable(nil)

func (t threadTable) Header() []string { return []string{"ID", "SUBJECT", "SNIPPET"} }

func (t threadTable) Rows() [][]string {
	rows := make([][]string, len(t))
	for i, s := range t {
		rows[i] = []string{s.ID, s.Subject, truncate(s.Snippet, 60)}
	}
	return rows
}

// summaryTable renders per-model usage totals.
type summaryTable []usage.Summary

func (t summaryTable) Header() []string {
	return []string{"MODEL", "REQUESTS", "PROMPT_TOKENS", "COMPLETION_TOKENS", "COST_USD"}
}

func (t summaryTable) Rows() [][]string {
	rows := make([][]string, 0, len(t)+1)
	var total usage.Summary
	for _, s := range t {
		rows = append(rows, summaryRow(s.Model, s))
		total.Requests += s.Requests
		total.PromptTokens += s.PromptTokens
		total.CompletionTokens += s.CompletionTokens
		total.CostUSD += s.CostUSD
	}
	if len(t) > 1 {
		rows = append(rows, summaryRow("TOTAL", total))
	}
	return rows
}

func summaryRow(label string, s usage.Summary) []string {
	return []string{
		label,
		strconv.FormatInt(s.Requests, 10),
		strconv.FormatInt(s.PromptTokens, 10),
		strconv.FormatInt(s.CompletionTokens, 10),
		strconv.FormatFloat(s.CostUSD, 'f', 6, 64),
	}
}

// recordTable renders individual usage records.
type recordTable []usage.Record

func (t recordTable) Header() []string {
	return []string{"TIME", "MODE", "MODEL", "SOURCE", "PROMPT", "COMPLETION", "COST_USD", "OUTCOME"}
}

func (t recordTable) Rows() [][]string {
	rows := make([][]string, len(t))
	for i, r := range t {
		rows[i] = []string{
			r.Timestamp.UTC().Format(time.RFC3339),
			r.Mode,
			r.Model,
			string(r.Source),
			strconv.Itoa(r.PromptTokens),
			strconv.Itoa(r.CompletionTokens),
			strconv.FormatFloat(r.CostUSD, 'f', 6, 64),
			r.Outcome,
		}
	}
	return rows
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
