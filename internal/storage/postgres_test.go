package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestErrorCodes(t *testing.T) {
	unique := &pq.Error{Code: "23505"}
	fk := &pq.Error{Code: "23503"}

	t.Run("detects wrapped unique violation", func(t *testing.T) {
		err := fmt.Errorf("insert user: %w", unique)
		if !IsUniqueViolation(err) {
			t.Error("expected unique violation")
		}
		if IsForeignKeyViolation(err) {
			t.Error("did not expect foreign key violation")
		}
	})

	t.Run("detects foreign key violation", func(t *testing.T) {
		if !IsForeignKeyViolation(fk) {
			t.Error("expected foreign key violation")
		}
	})

	t.Run("ignores other errors", func(t *testing.T) {
		if IsUniqueViolation(errors.New("boom")) || IsUniqueViolation(nil) {
			t.Error("expected false for non-pq errors")
		}
	})
}
