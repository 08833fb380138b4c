package server

import (
	"github.com/DachengChen/paiAnalyst/chart"
	"github.com/DachengChen/paiAnalyst/chat"
	"github.com/DachengChen/paiAnalyst/session"
	"github.com/DachengChen/paiAnalyst/table"
)

type columnResponse struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

type tableResponse struct {
	Columns []columnResponse `json:"columns"`
	Rows    [][]any          `json:"rows"`
	Metrics table.Metrics    `json:"metrics"`
}

type resultResponse struct {
	Fragment  int            `json:"fragment"`
	Statement string         `json:"statement"`
	Error     string         `json:"error,omitempty"`
	Table     *tableResponse `json:"table,omitempty"`
	Suggested *chart.Spec    `json:"suggested,omitempty"`
	YOptions  []string       `json:"y_options,omitempty"`
}

type answerResponse struct {
	Model   string   `json:"model"`
	Text    string   `json:"text"`
	Seconds string   `json:"seconds"`
	Sources []string `json:"sources"`
	Error   string   `json:"error,omitempty"`
}

type outcomeResponse struct {
	User      session.Turn     `json:"user"`
	Analyst   []session.Turn   `json:"analyst"`
	Results   []resultResponse `json:"results"`
	Answers   []answerResponse `json:"answers,omitempty"`
	Discarded bool             `json:"discarded,omitempty"`
}

func newTableResponse(t *table.Table) *tableResponse {
	cols := make([]columnResponse, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = columnResponse{Name: c.Name, Kind: c.Kind.String()}
	}
	rows := t.Rows
	if rows == nil {
		rows = [][]any{}
	}
	return &tableResponse{Columns: cols, Rows: rows, Metrics: t.Metrics()}
}

func newResultResponse(r chat.Result) resultResponse {
	out := resultResponse{Fragment: r.Fragment, Statement: r.Statement, Suggested: r.Suggested}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	if r.Table != nil {
		out.Table = newTableResponse(r.Table)
		if r.Suggested != nil {
			out.YOptions = chart.YOptions(r.Table, r.Suggested.X)
		}
	}
	return out
}

func newOutcomeResponse(o chat.Outcome) outcomeResponse {
	out := outcomeResponse{
		User:      o.User,
		Analyst:   o.Analyst,
		Results:   make([]resultResponse, 0, len(o.Results)),
		Discarded: o.Discarded,
	}
	if out.Analyst == nil {
		out.Analyst = []session.Turn{}
	}
	for _, r := range o.Results {
		out.Results = append(out.Results, newResultResponse(r))
	}
	for _, a := range o.Answers {
		ar := answerResponse{Model: a.Model, Text: a.Text, Seconds: a.Seconds(), Sources: []string{}}
		for _, h := range a.Sources {
			ar.Sources = append(ar.Sources, h.Display())
		}
		if a.Err != nil {
			ar.Error = a.Err.Error()
		}
		out.Answers = append(out.Answers, ar)
	}
	return out
}
