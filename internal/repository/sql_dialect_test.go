package repository

import (
	"strings"
	"testing"
)

func TestBuildKeywordLikeConditionSQLite(t *testing.T) {
	condition, argCount := buildKeywordLikeConditionByDialect("sqlite", []string{"username", "nickname"})
	if argCount != 2 {
		t.Fatalf("arg count want 2 got %d", argCount)
	}
	if condition != "username LIKE ? OR nickname LIKE ?" {
		t.Fatalf("unexpected condition: %s", condition)
	}
}

func TestBuildKeywordLikeConditionPostgres(t *testing.T) {
	condition, argCount := buildKeywordLikeConditionByDialect("postgres", []string{"username", "nickname"})
	if argCount != 2 {
		t.Fatalf("arg count want 2 got %d", argCount)
	}
	if !strings.Contains(condition, "ILIKE") {
		t.Fatalf("postgres condition should use ILIKE, got %s", condition)
	}
}

func TestBuildKeywordLikeConditionSkipsEmptyColumns(t *testing.T) {
	condition, argCount := buildKeywordLikeConditionByDialect("sqlite", []string{"username", "  ", ""})
	if argCount != 1 {
		t.Fatalf("arg count want 1 got %d", argCount)
	}
	if condition != "username LIKE ?" {
		t.Fatalf("unexpected condition: %s", condition)
	}
	if len(repeatLikeArgs("%x%", argCount)) != 1 {
		t.Fatalf("repeat args length mismatch")
	}
}
