package sqlstore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/simaogato/estateflow-backend/internal/domain"
)

// Dates are stored as YYYY-MM-DD text on every dialect

func dateValue(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(domain.DateLayout), Valid: true}
}

func parseDate(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	// Postgres may hand back a full timestamp when the column was created as DATE
	value := s.String
	if len(value) > len(domain.DateLayout) {
		value = value[:len(domain.DateLayout)]
	}
	t, err := domain.ParseDate(value)
	if err != nil {
		return nil, fmt.Errorf("invalid stored date %q: %w", s.String, err)
	}
	return &t, nil
}
