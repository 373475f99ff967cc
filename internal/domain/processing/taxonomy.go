package processing

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// FaultKind describes one entry of the fault taxonomy.
type FaultKind struct {
	Name        FaultType `toml:"name"`
	Scope       string    `toml:"scope"`
	Description string    `toml:"description"`
}

type taxonomyFile struct {
	Version int         `toml:"version"`
	Types   []FaultKind `toml:"types"`
}

// Taxonomy is the set of fault types known ahead of time. Unknown types are
// still recordable; the taxonomy only classifies them.
type Taxonomy struct {
	kinds map[FaultType]FaultKind
}

func DefaultTaxonomy() *Taxonomy {
	return newTaxonomy([]FaultKind{
		{Name: FaultNativeMissingDSYM, Scope: "native", Description: "debug symbols for an image were not uploaded"},
		{Name: FaultNativeBadDSYM, Scope: "native", Description: "uploaded debug symbols could not be processed"},
		{Name: FaultNativeMissingOptionallyBundledDSYM, Scope: "native", Description: "optionally bundled debug symbols are missing"},
		{Name: FaultNativeMissingSystemDSYM, Scope: "native", Description: "system debug symbols are missing"},
		{Name: FaultNativeMissingSymbol, Scope: "native", Description: "a symbol could not be resolved in the image"},
		{Name: FaultProguardMissingMapping, Scope: "proguard", Description: "proguard mapping file was not uploaded"},
		{Name: FaultProguardMissingLineno, Scope: "proguard", Description: "proguard mapping has no line number information"},
	})
}

func newTaxonomy(kinds []FaultKind) *Taxonomy {
	t := &Taxonomy{kinds: make(map[FaultType]FaultKind, len(kinds))}
	for _, kind := range kinds {
		t.kinds[kind.Name] = kind
	}
	return t
}

// LoadTaxonomy reads a TOML taxonomy file and merges it over the defaults.
// An empty path yields the defaults.
func LoadTaxonomy(path string) (*Taxonomy, error) {
	taxonomy := DefaultTaxonomy()

	path = strings.TrimSpace(path)
	if path == "" {
		return taxonomy, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file taxonomyFile
	if err := toml.Unmarshal(raw, &file); err != nil {
		return nil, err
	}
	if file.Version != 1 {
		return nil, fmt.Errorf("unsupported taxonomy version %d: expected version = 1", file.Version)
	}

	for i, kind := range file.Types {
		kind.Name = FaultType(strings.TrimSpace(string(kind.Name)))
		if kind.Name == "" {
			return nil, fmt.Errorf("types[%d].name is required", i)
		}
		kind.Scope = strings.TrimSpace(kind.Scope)
		if kind.Scope == "" {
			return nil, errors.New("types." + string(kind.Name) + ".scope is required")
		}
		taxonomy.kinds[kind.Name] = kind
	}
	return taxonomy, nil
}

func (t *Taxonomy) Lookup(faultType FaultType) (FaultKind, bool) {
	if t == nil {
		return FaultKind{}, false
	}
	kind, ok := t.kinds[faultType]
	return kind, ok
}

func (t *Taxonomy) IsKnown(faultType FaultType) bool {
	_, ok := t.Lookup(faultType)
	return ok
}

// Kinds returns the taxonomy ordered by scope, then name.
func (t *Taxonomy) Kinds() []FaultKind {
	if t == nil {
		return nil
	}

	out := make([]FaultKind, 0, len(t.kinds))
	for _, kind := range t.kinds {
		out = append(out, kind)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Scope != out[j].Scope {
			return out[i].Scope < out[j].Scope
		}
		return out[i].Name < out[j].Name
	})
	return out
}
