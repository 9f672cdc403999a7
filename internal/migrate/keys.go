package migrate

// Default tag key names used when neither the path nor the migrator
// overrides them.
const (
	DefaultVersionKey = "version"
	DefaultDataKey    = "data"
)

// Keys names the fields carrying the version tag and the payload in a
// tagged value. A zero-value field means "not set" during resolution;
// after registration a path always holds fully resolved keys.
type Keys struct {
	Version string // Field holding the semver string
	Data    string // Field holding the payload subtree (nested shape only)
}

// DefaultKeys returns the package-default key names.
func DefaultKeys() Keys {
	return Keys{Version: DefaultVersionKey, Data: DefaultDataKey}
}

// overlay returns k with any unset field filled from fallback.
func (k Keys) overlay(fallback Keys) Keys {
	if k.Version == "" {
		k.Version = fallback.Version
	}
	if k.Data == "" {
		k.Data = fallback.Data
	}
	return k
}
