package store

import (
	"database/sql"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/lib/pq"
)

func TestIsUnavailable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"closed connection", sql.ErrConnDone, true},
		{"wrapped closed connection", fmt.Errorf("select users: %w", sql.ErrConnDone), true},
		{"dial failure", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, true},
		{"server shutdown", &pq.Error{Code: "57P01"}, true},
		{"connection exception", &pq.Error{Code: "08006"}, true},
		{"duplicate key", &pq.Error{Code: "23505"}, false},
		{"plain statement error", errors.New("syntax error"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsUnavailable(tc.err); got != tc.want {
				t.Fatalf("IsUnavailable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !IsUniqueViolation(&pq.Error{Code: "23505"}) {
		t.Fatal("duplicate-key error not recognized")
	}
	if IsUniqueViolation(&pq.Error{Code: "08006"}) {
		t.Fatal("connection error misread as duplicate key")
	}
	if IsUniqueViolation(errors.New("x")) {
		t.Fatal("generic error misread as duplicate key")
	}
}
