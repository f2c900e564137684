package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.svc.EntriesOn(r.Context(), dateParam(r.URL.Query(), s.svc.Today()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(orEmpty(entries)).Write(w)
}

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	incomes, err := s.svc.IncomesOn(r.Context(), dateParam(r.URL.Query(), s.svc.Today()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(orEmpty(incomes)).Write(w)
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := s.svc.AddIncome(r.Context(), req.income(""))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Data(in).Write(w)
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := s.svc.UpdateIncome(r.Context(), req.income(mux.Vars(r)["id"]))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(in).Write(w)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteIncome(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.svc.ExpensesOn(r.Context(), dateParam(r.URL.Query(), s.svc.Today()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(orEmpty(expenses)).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	e, err := s.svc.AddExpense(r.Context(), req.expense(""))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Data(e).Write(w)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	e, err := s.svc.UpdateExpense(r.Context(), req.expense(mux.Vars(r)["id"]))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(e).Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteExpense(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
