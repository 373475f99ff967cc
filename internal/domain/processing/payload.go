package processing

const (
	reservedScopeKey  = "_scope"
	reservedObjectKey = "_object"
	reservedTypeKey   = "_type"
)

// Diagnostics is the caller supplied context attached to a fault class.
type Diagnostics struct {
	Message     string            `json:"message,omitempty"`
	ImagePath   string            `json:"image_path,omitempty"`
	ImageUUID   string            `json:"image_uuid,omitempty"`
	ImageArch   string            `json:"image_arch,omitempty"`
	MappingUUID string            `json:"mapping_uuid,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

// Payload is the stored diagnostic record of a fault class. The identity
// fields always echo the triple the checksum was derived from.
type Payload struct {
	Scope  string    `json:"_scope"`
	Object string    `json:"_object"`
	Type   FaultType `json:"_type"`
	Diagnostics
}

// NewPayload merges diagnostics with the identity. Reserved keys found in
// Attributes are dropped so callers cannot shadow the identity.
func NewPayload(identity Identity, diagnostics Diagnostics) Payload {
	diagnostics.Attributes = stripReserved(diagnostics.Attributes)
	return Payload{
		Scope:       identity.Scope,
		Object:      identity.Object,
		Type:        identity.Type,
		Diagnostics: diagnostics,
	}
}

func (p Payload) Identity() Identity {
	return Identity{Scope: p.Scope, Object: p.Object, Type: p.Type}
}

func stripReserved(attrs map[string]string) map[string]string {
	if len(attrs) == 0 {
		return nil
	}

	out := make(map[string]string, len(attrs))
	for key, value := range attrs {
		switch key {
		case reservedScopeKey, reservedObjectKey, reservedTypeKey:
			continue
		}
		out[key] = value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
