// Package rolematch compares approver role names against required roles,
// accepting configured aliases (e.g. "Department Manager" for "Hiring Manager").
package rolematch

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Aliases maps a normalized required role to the approver roles that may
// stand in for it.
type Aliases map[string][]string

// DefaultAliases returns a fresh copy of the built-in alias table.
func DefaultAliases() Aliases {
	return Aliases{
		"hiring manager":  {"department manager", "dept manager", "manager"},
		"hr manager":      {"hr_manager", "human resources manager"},
		"department head": {"dept head", "head of department"},
		"finance":         {"finance manager", "financial approver", "finance department"},
	}
}

// Matcher answers role equivalence questions. The zero value matches exact
// names only.
type Matcher struct {
	aliases map[string]map[string]struct{}
}

// New builds a Matcher over the given table. Keys and values are normalized.
func New(aliases Aliases) *Matcher {
	m := &Matcher{aliases: make(map[string]map[string]struct{}, len(aliases))}
	for required, alts := range aliases {
		key := Normalize(required)
		set, ok := m.aliases[key]
		if !ok {
			set = make(map[string]struct{}, len(alts))
			m.aliases[key] = set
		}
		for _, a := range alts {
			set[Normalize(a)] = struct{}{}
		}
	}
	return m
}

// NewDefault builds a Matcher over DefaultAliases.
func NewDefault() *Matcher { return New(DefaultAliases()) }

// Normalize lower-cases role, turns underscores and whitespace runs into a
// single space and trims the result.
func Normalize(role string) string {
	role = strings.ReplaceAll(strings.ToLower(role), "_", " ")
	return strings.Join(strings.Fields(role), " ")
}

// Matches reports whether approverRole satisfies requiredRole.
func (m *Matcher) Matches(approverRole, requiredRole string) bool {
	approver := Normalize(approverRole)
	required := Normalize(requiredRole)
	if approver == required {
		return true
	}
	if m == nil {
		return false
	}
	_, ok := m.aliases[required][approver]
	return ok
}

// LoadAliases reads a YAML document of the form
//
//	hiring manager: [department manager, team lead]
//	finance: [controller]
//
// and merges it over DefaultAliases. Entries for a required role replace the
// default list for that role.
func LoadAliases(path string) (Aliases, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read role aliases: %w", err)
	}
	var fromFile map[string][]string
	if err := yaml.Unmarshal(raw, &fromFile); err != nil {
		return nil, fmt.Errorf("parse role aliases %s: %w", path, err)
	}
	merged := DefaultAliases()
	for required, alts := range fromFile {
		merged[Normalize(required)] = alts
	}
	return merged, nil
}
