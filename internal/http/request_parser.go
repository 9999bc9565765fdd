package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"ledger/internal/core"
	"ledger/internal/services"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a single JSON value from the request body into v.
// Validation errors raised by field decoders pass through unchanged so the
// client sees which field was wrong.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, core.ErrValidation):
			return err
		case errors.As(err, &tooLarge):
			return core.Invalid("Request body too large")
		default:
			return core.Invalid("Invalid JSON body")
		}
	}
	return nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

func sanitizeExpenseInput(in *services.ExpenseInput) {
	if in.Title != nil {
		t := sanitizeInput(*in.Title)
		in.Title = &t
	}
	if in.Notes != nil {
		n := sanitizeInput(*in.Notes)
		in.Notes = &n
	}
	if in.Tags != nil {
		tags := make([]string, 0, len(*in.Tags))
		for _, tag := range *in.Tags {
			tags = append(tags, sanitizeInput(tag))
		}
		in.Tags = &tags
	}
}
