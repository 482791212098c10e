package store

import (
	"reflect"
	"testing"
)

func TestBuildWhereOps(t *testing.T) {
	where, args, next := buildWhere([]Filter{
		Eq("status", "requested"),
		Gte("start_time", "2026-03-10"),
		Neq("parent_id", "p1"),
	}, 1)

	want := ` WHERE "status" = $1 AND "start_time" >= $2 AND "parent_id" <> $3`
	if where != want {
		t.Fatalf("where = %q, want %q", where, want)
	}
	if !reflect.DeepEqual(args, []any{"requested", "2026-03-10", "p1"}) {
		t.Fatalf("args = %v", args)
	}
	if next != 4 {
		t.Fatalf("next = %d", next)
	}
}

func TestBuildWhereIn(t *testing.T) {
	where, args, _ := buildWhere([]Filter{
		In("status", "requested", "pending"),
		Eq("sitter_id", "s1"),
	}, 1)

	want := ` WHERE "status" IN ($1, $2) AND "sitter_id" = $3`
	if where != want {
		t.Fatalf("where = %q", where)
	}
	if len(args) != 3 {
		t.Fatalf("args = %v", args)
	}
}

func TestBuildWhereEmptyInMatchesNothing(t *testing.T) {
	where, args, _ := buildWhere([]Filter{In("status")}, 1)
	if where != " WHERE FALSE" {
		t.Fatalf("where = %q, want guaranteed-empty predicate", where)
	}
	if len(args) != 0 {
		t.Fatalf("args = %v", args)
	}
}

func TestBuildWhereIsNull(t *testing.T) {
	where, args, _ := buildWhere([]Filter{{Column: "read_at", Op: "isnull"}}, 1)
	if where != ` WHERE "read_at" IS NULL` {
		t.Fatalf("where = %q", where)
	}
	if len(args) != 0 {
		t.Fatalf("args = %v", args)
	}
}

func TestBuildWhereQuotesIdentifiers(t *testing.T) {
	where, _, _ := buildWhere([]Filter{Eq(`bad"col`, 1)}, 1)
	if where != ` WHERE "bad""col" = $1` {
		t.Fatalf("where = %q, identifier not quoted", where)
	}
}

func TestBuildWhereStartsAtOffset(t *testing.T) {
	// Update places SET parameters first; WHERE numbering continues.
	where, _, next := buildWhere([]Filter{Eq("id", "x"), Eq("status", "requested")}, 3)
	if where != ` WHERE "id" = $3 AND "status" = $4` {
		t.Fatalf("where = %q", where)
	}
	if next != 5 {
		t.Fatalf("next = %d", next)
	}
}

func TestClaimsJSON(t *testing.T) {
	// header.payload.signature with payload {"sub":"u1"}
	token := "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiJ1MSJ9.sig"
	if got := claimsJSON(token); got != `{"sub":"u1"}` {
		t.Fatalf("claims = %q", got)
	}
	if got := claimsJSON("garbage"); got != "{}" {
		t.Fatalf("garbage claims = %q, want empty object", got)
	}
	if got := claimsJSON("a.!!!.c"); got != "{}" {
		t.Fatalf("undecodable claims = %q, want empty object", got)
	}
}
