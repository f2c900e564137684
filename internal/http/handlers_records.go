package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s *Server) handleGetDrivingLog(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.DrivingLogOn(r.Context(), mux.Vars(r)["date"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(d).Write(w)
}

// handleSaveDrivingLog upserts the log of the date in the path.
func (s *Server) handleSaveDrivingLog(w http.ResponseWriter, r *http.Request) {
	var req drivingLogRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	d, err := s.svc.SaveDrivingLog(r.Context(), req.drivingLog(mux.Vars(r)["date"]))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(d).Write(w)
}

func (s *Server) handleDeleteDrivingLog(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteDrivingLog(r.Context(), mux.Vars(r)["date"]); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleSetGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	g, err := s.svc.SetMonthlyGoal(r.Context(), mux.Vars(r)["month"], req.TargetAmount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(g).Write(w)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteMonthlyGoal(r.Context(), mux.Vars(r)["month"]); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleToggleDayOff(w http.ResponseWriter, r *http.Request) {
	date := mux.Vars(r)["date"]
	off, err := s.svc.ToggleDayOff(r.Context(), date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(struct {
		Date     string `json:"date"`
		IsDayOff bool   `json:"isDayOff"`
	}{date, off}).Write(w)
}
