package rbac

import "testing"

func TestCheckerRoles(t *testing.T) {
	c := NewChecker(nil)

	tests := []struct {
		role string
		perm string
		want bool
	}{
		{"student", "attempt:submit", true},
		{"student", "test:create", false},
		{"student", "session:create", true},
		{"teacher", "test:create", true},
		{"teacher", "attempt:submit", false},
		{"teacher", "session:view-all", true},
		{"admin", "test:create", true},
		{"admin", "anything:at-all", true},
		{"", "test:view", false},
		{"ghost", "test:view", false},
	}
	for _, tc := range tests {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Errorf("Has(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestCheckerAnyAndWildcards(t *testing.T) {
	c := NewChecker(map[string][]string{
		"grader": {"attempt:*"},
	})
	if !c.Has("grader", "attempt:view-all") {
		t.Fatal("prefix wildcard should match")
	}
	if c.Has("grader", "test:view") {
		t.Fatal("prefix wildcard must not match a different prefix")
	}
	if !c.Any("grader", "test:view", "attempt:save") {
		t.Fatal("Any should pass when one permission matches")
	}
	if c.Any("grader", "test:view", "session:create") {
		t.Fatal("Any should fail when none match")
	}
}
