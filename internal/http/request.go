package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"balancebooks/internal/core"

	"github.com/go-chi/chi/v5"
)

const (
	maxJSONBody   = 1 << 20
	maxUploadBody = 32 << 20
)

var (
	errBadRequest = errors.New("bad request")
	errTooLarge   = errors.New("request body too large")
)

// decodeJSON reads a single JSON document of at most maxJSONBody bytes into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errTooLarge
		}
		return fmt.Errorf("%w: invalid JSON: %v", errBadRequest, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after JSON body", errBadRequest)
	}
	return nil
}

// readBody reads an upload of at most maxUploadBody bytes.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errTooLarge
		}
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return raw, nil
}

// periodParam reads {year}/{month} from the URL. The URL month is 1-12.
func periodParam(r *http.Request) (core.Period, error) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		return core.Period{}, fmt.Errorf("%w: year %q", core.ErrInvalidPeriod, chi.URLParam(r, "year"))
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		return core.Period{}, fmt.Errorf("%w: month %q", core.ErrInvalidPeriod, chi.URLParam(r, "month"))
	}
	p := core.Period{Year: year, Month: month - 1}
	if err := p.Validate(); err != nil {
		return core.Period{}, err
	}
	return p, nil
}

// intQuery parses an optional integer query parameter within [min, max].
func intQuery(r *http.Request, key string, def, min, max int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < min || n > max {
		return 0, fmt.Errorf("%w: %s must be between %d and %d", errBadRequest, key, min, max)
	}
	return n, nil
}

func boolQuery(r *http.Request, key string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return v
}
