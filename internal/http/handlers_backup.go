package http

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"balancebooks/internal/core"
	"balancebooks/internal/importer"
	applog "balancebooks/internal/log"
)

type importResponse struct {
	Imported int                 `json:"imported"`
	Skipped  int                 `json:"skipped"`
	Errors   []importer.RowError `json:"errors"`
	Preview  []core.Transaction  `json:"preview,omitempty"`
}

// csvUpload returns the uploaded CSV, either as the "file" part of a
// multipart form or as the raw request body.
func csvUpload(w http.ResponseWriter, r *http.Request) (io.Reader, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		raw, err := readBody(w, r)
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(raw), nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(maxUploadBody); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	f, _, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("%w: missing file field", errBadRequest)
	}
	defer f.Close()
	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return bytes.NewReader(raw), nil
}

// handleImportCSV parses a bank export. With ?dryRun=true the parsed
// candidates are returned without being saved.
func (s *Server) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	body, err := csvUpload(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := importer.ParseCSV(body)
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	resp := importResponse{Errors: res.Errors, Skipped: len(res.Errors)}
	if boolQuery(r, "dryRun") {
		resp.Preview = res.Transactions
		writeJSON(w, http.StatusOK, resp)
		return
	}

	imported, dropped, err := s.ledger.ImportTransactions(r.Context(), res.Transactions)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp.Imported = imported
	resp.Skipped += dropped
	applog.FromContext(r.Context()).InfoContext(r.Context(), "CSV imported",
		applog.FieldOperation, applog.OpImport,
		applog.FieldCount, imported,
		"skipped", resp.Skipped)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.backup.ExportCSV(r.Context(), &buf); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment("transactions", "csv"))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	bundle, err := s.backup.Export(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition", attachment("budget-backup", "json"))
	writeJSON(w, http.StatusOK, bundle)
}

// handleRestore replaces the ledger with an uploaded backup. With
// ?dryRun=true it only reports what the backup contains.
func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if boolQuery(r, "dryRun") {
		sum, err := s.backup.Inspect(raw)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, sum)
		return
	}

	sum, err := s.backup.Restore(r.Context(), raw)
	if err != nil {
		writeError(w, r, err)
		return
	}
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Ledger restored",
		applog.FieldOperation, applog.OpRestore,
		applog.FieldCount, sum.Transactions,
		"backup_version", sum.Version)
	writeJSON(w, http.StatusOK, sum)
}

func attachment(name, ext string) string {
	return fmt.Sprintf(`attachment; filename="%s-%s.%s"`, name, time.Now().UTC().Format("2006-01-02"), ext)
}
