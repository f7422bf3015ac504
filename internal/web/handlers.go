package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/efigueroa/tesoreria/internal/ledger"
	"github.com/efigueroa/tesoreria/internal/logging"
)

// handleHealth reports process liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":         "ok",
		"active_imports": s.service.ActiveImports(),
	})
}

// handleImport runs a workbook import against one account. The workbook is
// sent as a multipart file under the "workbook" field; ?dry_run=1 computes
// the full summary without writing anything.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	accountCode := chi.URLParam(r, "accountCode")
	if accountCode == "" {
		writeError(w, http.StatusBadRequest, "missing account code")
		return
	}

	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		writeError(w, http.StatusBadRequest, "file too large or invalid form")
		return
	}

	file, header, err := r.FormFile("workbook")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no workbook provided")
		return
	}
	defer file.Close()

	dryRun := r.URL.Query().Get("dry_run") == "1" || r.URL.Query().Get("dry_run") == "true"

	logger := logging.WithFields(r.Context(),
		"account", accountCode,
		"workbook", header.Filename,
		"dry_run", dryRun,
	)
	logger.Info("import requested")

	summary, err := s.service.RunImport(r.Context(), accountCode, header.Filename, file, dryRun)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrImportInProgress), errors.Is(err, ledger.ErrTooManyImports):
			writeError(w, http.StatusConflict, err.Error())
		case summary != nil:
			// Persistence failure: the summary still tells the caller
			// what happened before the rollback.
			writeJSONStatus(w, http.StatusInternalServerError, summary)
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	writeJSON(w, summary)
}

// handlePeriodLocked answers the read-only "is this period locked" query
// exposed to the surrounding modules.
func (s *Server) handlePeriodLocked(w http.ResponseWriter, r *http.Request) {
	year, month, ok := periodParams(w, r)
	if !ok {
		return
	}

	locked, err := s.service.IsPeriodLocked(r.Context(), year, month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, map[string]any{
		"period": ledger.Period{Year: year, Month: month}.String(),
		"locked": locked,
	})
}

// handleLockPeriod closes an accounting period for writes.
func (s *Server) handleLockPeriod(w http.ResponseWriter, r *http.Request) {
	year, month, ok := periodParams(w, r)
	if !ok {
		return
	}

	p := ledger.Period{Year: year, Month: month}
	if err := s.store.LockPeriod(r.Context(), p, r.Header.Get("X-Actor")); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, map[string]any{"period": p.String(), "locked": true})
}

// handleUnlockPeriod reopens an accounting period.
func (s *Server) handleUnlockPeriod(w http.ResponseWriter, r *http.Request) {
	year, month, ok := periodParams(w, r)
	if !ok {
		return
	}

	p := ledger.Period{Year: year, Month: month}
	if err := s.store.UnlockPeriod(r.Context(), p); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, map[string]any{"period": p.String(), "locked": false})
}

// periodParams parses and validates the {year}/{month} URL parameters.
func periodParams(w http.ResponseWriter, r *http.Request) (int, time.Month, bool) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1900 || year > 9999 {
		writeError(w, http.StatusBadRequest, "invalid year")
		return 0, 0, false
	}

	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "invalid month")
		return 0, 0, false
	}

	return year, time.Month(month), true
}
