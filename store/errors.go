package store

import (
	"regexp"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// Closed taxonomy of engine failure kinds, carried on the error's TextCode.
const (
	TextCodeUniqueConstraint = "UNIQUE_CONSTRAINT_FAILED"
	TextCodeNullConstraint   = "NULL_CONSTRAINT_FAILED"
	TextCodeForeignKey       = "FOREIGN_KEY_CONSTRAINT_FAILED"
	TextCodeTableNotExist    = "TABLE_NOT_EXIST"
	TextCodeTypeMismatch     = "DATA_TYPE_MISMATCH"
	TextCodeInsertNoID       = "INSERTION_FAILED_NO_ID"
	TextCodeUnknown          = "UNKNOWN_ERROR"
)

var (
	uniqueColumnRe  = regexp.MustCompile(`UNIQUE constraint failed: (?:\w+\.)?(\w+)`)
	notNullColumnRe = regexp.MustCompile(`NOT NULL constraint failed: (?:\w+\.)?(\w+)`)
	mismatchColRe   = regexp.MustCompile(`column (?:\w+\.)?(\w+)`)
)

// classify maps a raw engine failure onto the closed taxonomy. The metadata
// payload always carries the attempted SQL and parameter list so the failure
// can be reproduced from logs alone; values, when provided, resolves an
// offending column back to the attempted value.
func (s *Store) classify(err error, sqlText string, args []any, values map[string]any) *goerrors.Error {
	msg := err.Error()
	metadata := map[string]any{
		"sql":    sqlText,
		"params": normalizeParams(args),
	}

	// Pattern order is significant: first match wins.
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		if m := uniqueColumnRe.FindStringSubmatch(msg); m != nil {
			metadata["column"] = m[1]
			if v, ok := values[m[1]]; ok {
				metadata["value"] = v
			}
		}
		return goerrors.Wrap(err, goerrors.CategoryValidation, "userstore: unique constraint violated").
			WithCode(goerrors.CodeBadRequest).
			WithTextCode(TextCodeUniqueConstraint).
			WithMetadata(metadata)

	case strings.Contains(msg, "NOT NULL constraint failed"):
		if m := notNullColumnRe.FindStringSubmatch(msg); m != nil {
			metadata["column"] = m[1]
		}
		return goerrors.Wrap(err, goerrors.CategoryValidation, "userstore: not-null constraint violated").
			WithCode(goerrors.CodeBadRequest).
			WithTextCode(TextCodeNullConstraint).
			WithMetadata(metadata)

	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return goerrors.Wrap(err, goerrors.CategoryValidation, "userstore: foreign key constraint violated").
			WithCode(goerrors.CodeBadRequest).
			WithTextCode(TextCodeForeignKey).
			WithMetadata(metadata)

	case strings.Contains(msg, "no such table"):
		return goerrors.Wrap(err, goerrors.CategoryInternal, "userstore: table does not exist").
			WithCode(goerrors.CodeInternal).
			WithTextCode(TextCodeTableNotExist).
			WithMetadata(metadata)

	case strings.Contains(msg, "datatype mismatch"):
		if m := mismatchColRe.FindStringSubmatch(msg); m != nil {
			metadata["column"] = m[1]
		}
		if expected := expectedType(msg); expected != "" {
			metadata["expected_type"] = expected
		}
		return goerrors.Wrap(err, goerrors.CategoryValidation, "userstore: datatype mismatch").
			WithCode(goerrors.CodeBadRequest).
			WithTextCode(TextCodeTypeMismatch).
			WithMetadata(metadata)

	default:
		return goerrors.Wrap(err, goerrors.CategoryInternal, "userstore: engine failure").
			WithCode(goerrors.CodeInternal).
			WithTextCode(TextCodeUnknown).
			WithMetadata(metadata)
	}
}

// insertWithoutID reports a write that succeeded without returning a row
// identifier.
func insertWithoutID(sqlText string, args []any, changes int64) *goerrors.Error {
	return goerrors.New("userstore: insert completed but no row id was returned", goerrors.CategoryInternal).
		WithCode(goerrors.CodeInternal).
		WithTextCode(TextCodeInsertNoID).
		WithMetadata(map[string]any{
			"sql":     sqlText,
			"params":  normalizeParams(args),
			"changes": changes,
		})
}

func expectedType(msg string) string {
	for _, t := range []string{"INTEGER", "TEXT", "REAL", "BLOB"} {
		if strings.Contains(msg, t) {
			return t
		}
	}
	return ""
}

// normalizeParams renders parameters into a stable, loggable form: date-like
// values use the engine text encoding and nils become explicit NULL markers.
func normalizeParams(args []any) []any {
	if len(args) == 0 {
		return nil
	}
	out := make([]any, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case nil:
			out[i] = "NULL"
		case time.Time:
			out[i] = encodeTime(v)
		case *time.Time:
			if v == nil {
				out[i] = "NULL"
			} else {
				out[i] = encodeTime(*v)
			}
		default:
			out[i] = v
		}
	}
	return out
}
