// Package overrides forces known tricky invoice descriptions onto a fixed
// catalog item before any fuzzy matching runs.
package overrides

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"pharmamatch/internal"
	"pharmamatch/internal/catalog"
)

var ErrInvalidRule = errors.New("invalid override rule")

// Rule fires when the cleaned invoice name contains every NameContains word
// and the simplified supplier starts with SupplierPrefix. The target is either
// an explicit code or the first catalog item containing every TargetContains word.
type Rule struct {
	Name           string   `yaml:"name"`
	NameContains   []string `yaml:"name_contains"`
	SupplierPrefix string   `yaml:"supplier_prefix"`
	TargetContains []string `yaml:"target_contains"`
	TargetCode     string   `yaml:"target_code"`
}

type file struct {
	Rules []Rule `yaml:"rules"`
}

func Defaults() []Rule {
	return []Rule{
		{
			Name:           "nasal-cannula-adult",
			NameContains:   []string{"NASAL", "CANNULA", "ADULT"},
			SupplierPrefix: "AL MAQAM",
			TargetContains: []string{"NASAL", "OXYGEN", "CANNULA", "ADULT"},
		},
		{
			Name:           "pregnacare",
			NameContains:   []string{"PREGNACARE"},
			TargetContains: []string{"PREGNACARE", "ORIGINAL", "30"},
		},
		{
			Name:           "ozanex",
			NameContains:   []string{"OZANEX"},
			TargetContains: []string{"OZANEX"},
		},
	}
}

// LoadFile reads a YAML rule list. An empty path yields the default rules.
func LoadFile(path string) ([]Rule, error) {
	if path == "" {
		return Defaults(), nil
	}
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f file
	if err := yaml.Unmarshal(blob, &f); err != nil {
		return nil, fmt.Errorf("overrides %s: %w", path, err)
	}
	for i := range f.Rules {
		if err := f.Rules[i].normalize(); err != nil {
			return nil, fmt.Errorf("overrides %s rule %d: %w", path, i+1, err)
		}
	}
	return f.Rules, nil
}

func (r *Rule) normalize() error {
	r.NameContains = upperAll(r.NameContains)
	r.TargetContains = upperAll(r.TargetContains)
	r.SupplierPrefix = strings.ToUpper(strings.TrimSpace(r.SupplierPrefix))
	r.TargetCode = strings.TrimSpace(r.TargetCode)
	if len(r.NameContains) == 0 {
		return fmt.Errorf("%w: name_contains is empty", ErrInvalidRule)
	}
	if len(r.TargetContains) == 0 && r.TargetCode == "" {
		return fmt.Errorf("%w: no target", ErrInvalidRule)
	}
	return nil
}

func (r Rule) Matches(cleanName, supplierKey string) bool {
	for _, w := range r.NameContains {
		if !strings.Contains(cleanName, w) {
			return false
		}
	}
	return strings.HasPrefix(supplierKey, r.SupplierPrefix)
}

// Resolve returns the target item, or false when the catalog has no such item.
func (r Rule) Resolve(idx *catalog.Index) (*internal.CatalogItem, bool) {
	if r.TargetCode != "" {
		return idx.Lookup(r.TargetCode)
	}
	i, ok := idx.FindContainingAll(r.TargetContains)
	if !ok {
		return nil, false
	}
	return &idx.Items[i], true
}

type Set struct {
	rules []Rule
}

func NewSet(rules []Rule) *Set {
	return &Set{rules: rules}
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// Apply evaluates rules in order. A matching rule whose target is missing
// from the catalog does not stop later rules.
func (s *Set) Apply(idx *catalog.Index, cleanName, supplierKey string) (*internal.CatalogItem, Rule, bool) {
	if s == nil {
		return nil, Rule{}, false
	}
	for _, r := range s.rules {
		if !r.Matches(cleanName, supplierKey) {
			continue
		}
		if item, ok := r.Resolve(idx); ok {
			return item, r, true
		}
	}
	return nil, Rule{}, false
}

func upperAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
