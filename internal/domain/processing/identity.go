package processing

import "strings"

// FaultType discriminates fault classes within a scope.
type FaultType string

const (
	FaultNativeMissingDSYM                  FaultType = "native_missing_dsym"
	FaultNativeBadDSYM                      FaultType = "native_bad_dsym"
	FaultNativeMissingOptionallyBundledDSYM FaultType = "native_missing_optionally_bundled_dsym"
	FaultNativeMissingSystemDSYM            FaultType = "native_missing_system_dsym"
	FaultNativeMissingSymbol                FaultType = "native_missing_symbol"
	FaultProguardMissingMapping             FaultType = "proguard_missing_mapping"
	FaultProguardMissingLineno              FaultType = "proguard_missing_lineno"
)

func (t FaultType) String() string { return string(t) }

// Identity is the (scope, object, type) triple naming one fault class.
type Identity struct {
	Scope  string
	Object string
	Type   FaultType
}

func NewIdentity(scope string, object string, faultType string) Identity {
	return Identity{
		Scope:  scope,
		Object: object,
		Type:   FaultType(faultType),
	}
}

func (i Identity) Checksum() string {
	return Checksum(i.Scope, i.Object, string(i.Type))
}

func (i Identity) String() string {
	return strings.Join([]string{i.Scope, i.Object, string(i.Type)}, "/")
}
