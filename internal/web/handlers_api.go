package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/JonMunkholm/proker/internal/core"
	"github.com/JonMunkholm/proker/internal/csvparse"
	"github.com/JonMunkholm/proker/internal/logging"
	"github.com/JonMunkholm/proker/internal/store"
	"github.com/JonMunkholm/proker/internal/textfmt"
)

// SheetsResponse is the body of GET /api/sheets and POST /api/refresh.
type SheetsResponse struct {
	Sheets      []core.SheetSummary `json:"sheets"`
	CompletedAt time.Time           `json:"completedAt"`
}

// ProgramResponse is a program with its structured fields split into blocks.
type ProgramResponse struct {
	core.Program
	Blocks map[string][]textfmt.Block `json:"blocks"`
}

// ProgramsResponse is the body of GET /api/sheets/{tab}/programs.
type ProgramsResponse struct {
	Sheet    string            `json:"sheet"`
	Stale    bool              `json:"stale"`
	Programs []ProgramResponse `json:"programs"`
}

// SnapshotsResponse is the body of GET /api/sheets/{tab}/snapshots.
type SnapshotsResponse struct {
	Sheet     string           `json:"sheet"`
	Snapshots []store.Snapshot `json:"snapshots"`
}

// ParseResponse is the body of POST /api/parse.
type ParseResponse struct {
	Rows     csvparse.Table `json:"rows"`
	RowCount int            `json:"rowCount"`
}

// FormatRequest is the JSON form of a POST /api/format body.
type FormatRequest struct {
	Text string `json:"text"`
}

// FormatResponse is the body of POST /api/format.
type FormatResponse struct {
	Formatted string          `json:"formatted"`
	Blocks    []textfmt.Block `json:"blocks"`
}

func (s *Server) handleListSheets(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.service.Summaries()
	if err != nil {
		s.respondError(w, r, err, statusFor(err, http.StatusInternalServerError))
		return
	}
	result, _ := s.service.Result()
	writeJSON(w, http.StatusOK, SheetsResponse{Sheets: summaries, CompletedAt: result.CompletedAt})
}

func (s *Server) handleSheetTable(w http.ResponseWriter, r *http.Request) {
	tab, err := pathTab(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	data, err := s.service.SheetAt(tab)
	if err != nil {
		s.respondError(w, r, err, statusFor(err, http.StatusInternalServerError))
		return
	}
	if data.DataRows == nil {
		data.DataRows = []csvparse.Row{}
	}
	writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleSheetPrograms(w http.ResponseWriter, r *http.Request) {
	tab, err := pathTab(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	data, err := s.service.SheetAt(tab)
	if err != nil {
		s.respondError(w, r, err, statusFor(err, http.StatusInternalServerError))
		return
	}

	programs := core.ExtractPrograms(data)
	resp := ProgramsResponse{
		Sheet:    data.Name,
		Stale:    data.Stale,
		Programs: make([]ProgramResponse, len(programs)),
	}
	for i, p := range programs {
		resp.Programs[i] = programResponse(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

// programResponse classifies every structured field of p.
func programResponse(p core.Program) ProgramResponse {
	blocks := make(map[string][]textfmt.Block)
	for _, spec := range core.ProgramFields {
		if !spec.Formatted {
			continue
		}
		if b := textfmt.Blocks(p.Field(spec.Key)); b != nil {
			blocks[spec.Key] = b
		}
	}
	return ProgramResponse{Program: p, Blocks: blocks}
}

func (s *Server) handleSheetSnapshots(w http.ResponseWriter, r *http.Request) {
	tab, err := pathTab(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	limit := min(parseIntParam(r, "limit", defaultSnapshotLimit), maxSnapshotLimit)
	snaps, err := s.service.History(r.Context(), tab, limit)
	if err != nil {
		s.respondError(w, r, err, statusFor(err, http.StatusInternalServerError))
		return
	}
	if snaps == nil {
		snaps = []store.Snapshot{}
	}

	writeJSON(w, http.StatusOK, SnapshotsResponse{
		Sheet:     s.service.Sheets()[tab].Name,
		Snapshots: snaps,
	})
}

// handleParse parses a CSV request body into rows.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	rows, err := csvparse.ParseReader(http.MaxBytesReader(w, r.Body, s.cfg.Web.MaxRequestBody))
	if err != nil {
		s.respondError(w, r, err, statusFor(err, http.StatusBadRequest))
		return
	}
	if rows == nil {
		rows = csvparse.Table{}
	}
	writeJSON(w, http.StatusOK, ParseResponse{Rows: rows, RowCount: rows.Len()})
}

// handleFormat structures free text. The body is either plain text or a
// JSON FormatRequest when sent as application/json.
func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r, s.cfg.Web.MaxRequestBody)
	if err != nil {
		s.respondError(w, r, err, statusFor(err, http.StatusBadRequest))
		return
	}

	text := body
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		var req FormatRequest
		if err := json.Unmarshal([]byte(body), &req); err != nil {
			s.respondError(w, r, fmt.Errorf("invalid request: %w", err), http.StatusBadRequest)
			return
		}
		text = req.Text
	}
	if strings.TrimSpace(text) == "" {
		s.respondError(w, r, errEmptyBody, http.StatusBadRequest)
		return
	}

	formatted := textfmt.Format(text)
	blocks := textfmt.Blocks(formatted)
	if blocks == nil {
		blocks = []textfmt.Block{}
	}
	writeJSON(w, http.StatusOK, FormatResponse{Formatted: formatted, Blocks: blocks})
}

// handleRefresh reloads every sheet now.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := core.ContextWithTrigger(r.Context(), core.TriggerManual)

	result, err := s.service.Refresh(ctx)
	if err != nil {
		s.respondError(w, r, err, statusFor(err, http.StatusBadGateway))
		return
	}

	summaries, err := s.service.Summaries()
	if err != nil {
		s.respondError(w, r, err, statusFor(err, http.StatusInternalServerError))
		return
	}

	logging.FromContext(r.Context()).Info("manual refresh",
		"sheets", len(result.Sheets),
		"stale", result.StaleCount(),
	)
	writeJSON(w, http.StatusOK, SheetsResponse{Sheets: summaries, CompletedAt: result.CompletedAt})
}
