package httptransport

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domerrors "github.com/felipebelchiorpro/sistema-de-pontos/pkg/domain-errors"
)

// badRequest wraps a parse failure into the uniform error envelope.
func badRequest(message string) error {
	return domerrors.New(domerrors.CodeBadRequest, message)
}

// parseAmount converts a JSON number into a decimal without passing through
// float64, which would corrupt currency precision.
func parseAmount(raw json.Number, field string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Decimal{}, badRequest(field + " is required")
	}
	d, err := decimal.NewFromString(raw.String())
	if err != nil {
		return decimal.Decimal{}, badRequest(field + " must be a number")
	}
	return d, nil
}

// parseOptionalDate parses an RFC 3339 timestamp, or a bare YYYY-MM-DD date,
// returning the zero time when the field is absent.
func parseOptionalDate(raw, field string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Time{}, badRequest(field + " must be RFC 3339 or YYYY-MM-DD")
}

// parseUUID validates a UUID carried in a request body.
func parseUUID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, badRequest(field + " must be a valid UUID")
	}
	return id, nil
}

// pathUUID extracts a UUID path parameter.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, badRequest(name + " must be a valid UUID")
	}
	return id, nil
}

// queryDateRange parses optional from/to query parameters into an inclusive
// range. The "to" bound is pushed to end of day so a bare date includes its
// whole day.
func queryDateRange(r *http.Request) (from, to *time.Time, err error) {
	if raw := r.URL.Query().Get("from"); raw != "" {
		t, perr := parseOptionalDate(raw, "from")
		if perr != nil {
			return nil, nil, perr
		}
		from = &t
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		t, perr := parseOptionalDate(raw, "to")
		if perr != nil {
			return nil, nil, perr
		}
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		to = &t
	}
	return from, to, nil
}
