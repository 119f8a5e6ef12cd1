package service_test

import (
	"testing"

	"github.com/msomdec/devconnector/internal/service"
)

func TestAuthorizeOwner(t *testing.T) {
	tests := []struct {
		name  string
		actor string
		owner string
		want  bool
	}{
		{"owner", "u1", "u1", true},
		{"other user", "u2", "u1", false},
		{"empty actor", "", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := service.AuthorizeOwner(tc.actor, tc.owner); got != tc.want {
				t.Fatalf("AuthorizeOwner(%q, %q) = %v, want %v", tc.actor, tc.owner, got, tc.want)
			}
		})
	}
}
