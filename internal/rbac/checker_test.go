package rbac

import "testing"

func TestDefaultPolicy(t *testing.T) {
	c := NewChecker(nil)

	cases := []struct {
		role, perm string
		want       bool
	}{
		{"admin", "event:create", true}, // wildcard
		{"admin", "certs:manage", true},
		{"evaluator", "score:put", true},
		{"evaluator", "event:create", false},
		{"participant", "podium:view", true},
		{"participant", "score:put", false},
		{"attendee", "score:put", false},
		{"unknown-role", "event:view", false},
	}
	for _, tc := range cases {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Fatalf("Has(%s, %s) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestPrefixWildcard(t *testing.T) {
	c := NewChecker(map[string][]string{"ops": {"event:*"}})
	if !c.Has("ops", "event:view") || !c.Has("ops", "event:manage") {
		t.Fatal("prefix wildcard should cover event perms")
	}
	if c.Has("ops", "score:put") {
		t.Fatal("prefix wildcard leaked outside its prefix")
	}
}

func TestAny(t *testing.T) {
	c := NewChecker(nil)
	if !c.Any("participant", "detail:view", "detail:view-own") {
		t.Fatal("Any should accept when one perm matches")
	}
	if c.Any("attendee", "detail:view", "detail:view-own") {
		t.Fatal("Any matched with no granted perm")
	}
}
