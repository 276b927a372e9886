package rolematch_test

import (
	"os"
	"path/filepath"
	"testing"

	"hrdesk/recruitment-service/internal/rolematch"
)

// ── Normalize ──────────────────────────────────────────────────────────────

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"HR_MANAGER":            "hr manager",
		"  Hiring   Manager ":   "hiring manager",
		"department__head":      "department head",
		"Finance\tDepartment":   "finance department",
		"":                      "",
	}
	for in, want := range cases {
		if got := rolematch.Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

// ── Matches ────────────────────────────────────────────────────────────────

func TestMatches_ExactAfterNormalization(t *testing.T) {
	m := rolematch.NewDefault()
	if !m.Matches("hr_manager", "HR_MANAGER") {
		t.Error("hr_manager should match HR_MANAGER")
	}
	if !m.Matches("Finance", "FINANCE") {
		t.Error("Finance should match FINANCE")
	}
}

func TestMatches_Aliases(t *testing.T) {
	m := rolematch.NewDefault()
	cases := []struct {
		approver, required string
	}{
		{"Department Manager", "HIRING_MANAGER"},
		{"dept manager", "hiring manager"},
		{"Manager", "HIRING_MANAGER"},
		{"Human Resources Manager", "HR_MANAGER"},
		{"Head of Department", "DEPARTMENT_HEAD"},
		{"dept head", "DEPARTMENT_HEAD"},
		{"Financial Approver", "FINANCE"},
		{"finance_department", "FINANCE"},
	}
	for _, c := range cases {
		if !m.Matches(c.approver, c.required) {
			t.Errorf("Matches(%q, %q) should be true", c.approver, c.required)
		}
	}
}

func TestMatches_AliasesAreOneWay(t *testing.T) {
	m := rolematch.NewDefault()
	if m.Matches("HIRING_MANAGER", "manager") {
		t.Error("aliases apply to the required role only")
	}
	if m.Matches("Finance Manager", "HR_MANAGER") {
		t.Error("finance manager must not satisfy hr manager")
	}
}

func TestMatches_NilMatcherIsExactOnly(t *testing.T) {
	var m *rolematch.Matcher
	if !m.Matches("HR Manager", "hr_manager") {
		t.Error("nil matcher should still match exact names")
	}
	if m.Matches("Manager", "HIRING_MANAGER") {
		t.Error("nil matcher has no aliases")
	}
}

func TestMatches_CustomTable(t *testing.T) {
	m := rolematch.New(rolematch.Aliases{"FINANCE": {"Controller"}})
	if !m.Matches("controller", "finance") {
		t.Error("custom alias should match")
	}
	if m.Matches("finance manager", "finance") {
		t.Error("custom table replaces the defaults")
	}
}

// ── LoadAliases ────────────────────────────────────────────────────────────

func TestLoadAliases_MergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	doc := "Finance:\n  - controller\n  - cfo\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	aliases, err := rolematch.LoadAliases(path)
	if err != nil {
		t.Fatalf("LoadAliases: %v", err)
	}
	m := rolematch.New(aliases)
	if !m.Matches("CFO", "FINANCE") {
		t.Error("file alias should match")
	}
	if m.Matches("finance manager", "FINANCE") {
		t.Error("file entry should replace the default finance list")
	}
	if !m.Matches("dept manager", "HIRING_MANAGER") {
		t.Error("untouched defaults should survive the merge")
	}
}

func TestLoadAliases_Errors(t *testing.T) {
	if _, err := rolematch.LoadAliases(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("finance: [unterminated"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := rolematch.LoadAliases(path); err == nil {
		t.Error("malformed YAML should fail")
	}
}
