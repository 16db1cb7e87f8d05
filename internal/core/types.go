package core

import (
	"time"

	"github.com/JonMunkholm/proker/internal/csvparse"
	"github.com/JonMunkholm/proker/internal/textfmt"
)

// Sheet is one tab of the published spreadsheet.
type Sheet struct {
	Name string `json:"name" yaml:"name"`
	GID  string `json:"gid" yaml:"gid"`
}

// SheetData is the parsed content of one sheet from a single fetch.
type SheetData struct {
	Name       string         `json:"name"`
	GID        string         `json:"gid"`
	Rows       csvparse.Table `json:"-"`
	Headers    csvparse.Row   `json:"headers"`
	DataRows   []csvparse.Row `json:"rows"`
	FetchedAt  time.Time      `json:"fetchedAt"`
	Stale      bool           `json:"stale"`
	SnapshotID string         `json:"snapshotId,omitempty"`
}

// NewSheetData splits a parsed table into header and data rows.
func NewSheetData(sheet Sheet, rows csvparse.Table, fetchedAt time.Time) SheetData {
	return SheetData{
		Name:      sheet.Name,
		GID:       sheet.GID,
		Rows:      rows,
		Headers:   rows.Header(),
		DataRows:  rows.DataRows(),
		FetchedAt: fetchedAt,
	}
}

// IsEmpty reports whether the sheet had no rows at all, not even a header.
func (d SheetData) IsEmpty() bool {
	return len(d.Rows) == 0
}

// FieldSpec describes one semantic program field and how to find its column.
type FieldSpec struct {
	Key        string   // JSON / template key: "purpose"
	Label      string   // Display label: "Tujuan"
	Candidates []string // Header names tried in order; first match wins
	Formatted  bool     // Value is passed through textfmt.Format
}

// Program is one data row of a sheet mapped to named fields.
type Program struct {
	ID       int    `json:"id"`
	Number   int    `json:"number"`
	Title    string `json:"title"`
	Purpose  string `json:"purpose"`
	Outcome  string `json:"outcome"`
	Output   string `json:"output"`
	Urgency  string `json:"urgency"`
	Detail   string `json:"detail"`
	Target   string `json:"target"`
	Tools    string `json:"tools"`
	SDGs     string `json:"sdgs"`
	Cluster  string `json:"cluster"`
	SDGGoals []int  `json:"sdgGoals,omitempty"`
}

// Field returns the value stored under a FieldSpec key.
func (p Program) Field(key string) string {
	switch key {
	case "title":
		return p.Title
	case "purpose":
		return p.Purpose
	case "outcome":
		return p.Outcome
	case "output":
		return p.Output
	case "urgency":
		return p.Urgency
	case "detail":
		return p.Detail
	case "target":
		return p.Target
	case "tools":
		return p.Tools
	case "sdgs":
		return p.SDGs
	case "cluster":
		return p.Cluster
	default:
		return textfmt.Empty
	}
}

// HasCluster reports whether the cluster column had a value.
func (p Program) HasCluster() bool {
	return p.Cluster != textfmt.Empty
}

// SheetSummary is the listing entry for one sheet.
type SheetSummary struct {
	Index      int       `json:"index"`
	Name       string    `json:"name"`
	GID        string    `json:"gid"`
	RowCount   int       `json:"rowCount"`
	Programs   int       `json:"programs"`
	FetchedAt  time.Time `json:"fetchedAt"`
	Stale      bool      `json:"stale"`
	SnapshotID string    `json:"snapshotId,omitempty"`
}

// RefreshResult is the outcome of fetching every configured sheet.
type RefreshResult struct {
	Sheets      []SheetData
	CompletedAt time.Time
	Duration    time.Duration
}

// StaleCount returns how many sheets were served from a snapshot.
func (r RefreshResult) StaleCount() int {
	n := 0
	for _, s := range r.Sheets {
		if s.Stale {
			n++
		}
	}
	return n
}
