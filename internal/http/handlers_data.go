package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"

	"taxiledger/internal/core"
	"taxiledger/internal/export"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type importResponse struct {
	Incomes      int    `json:"incomes"`
	Expenses     int    `json:"expenses"`
	DrivingLogs  int    `json:"drivingLogs"`
	MonthlyGoals int    `json:"monthlyGoals"`
	DaysOff      int    `json:"daysOff"`
	LastUpdated  string `json:"lastUpdated"`
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Snapshot(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, snap); err != nil {
		writeError(w, r, err)
		return
	}
	name := fmt.Sprintf("taxiledger-%s.csv", core.DayKey(s.svc.Today()))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(name))
	_, _ = buf.WriteTo(w)
}

// handleExportXLSX writes the workbook whose Summary sheet covers ?month=,
// the current month by default.
func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	today := s.svc.Today()
	month := monthParam(r.URL.Query(), today)
	if err := core.ValidateMonth(month); err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}
	snap, err := s.svc.Snapshot(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, snap, month, today); err != nil {
		writeError(w, r, err)
		return
	}
	name := fmt.Sprintf("taxiledger-%s.xlsx", month)
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", attachment(name))
	_, _ = buf.WriteTo(w)
}

// handleImport replaces the whole ledger with the uploaded CSV, or with a JSON
// snapshot when the body is sent as application/json.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body := io.LimitReader(r.Body, maxBodyBytes)

	var (
		snap core.Snapshot
		err  error
	)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		dec := json.NewDecoder(body)
		if derr := dec.Decode(&snap); derr != nil {
			err = fmt.Errorf("%w: %v", errBadRequest, derr)
		}
	} else {
		snap, err = export.ReadCSV(body)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	imported, err := s.svc.Import(r.Context(), snap)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(importResponse{
		Incomes:      len(imported.Incomes),
		Expenses:     len(imported.Expenses),
		DrivingLogs:  len(imported.DrivingLogs),
		MonthlyGoals: len(imported.MonthlyGoals),
		DaysOff:      len(imported.DaysOff),
		LastUpdated:  imported.LastUpdated,
	}).Write(w)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.ClearAll(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
