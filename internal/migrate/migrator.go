package migrate

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/dreamware/migra/internal/codec"
)

// Migrator is the registry mapping entity names to validated migration
// paths and the entry point for load/save operations.
//
// Build it once at startup: construct with New, register every path, then
// treat it as read-only. All load/save methods are safe for concurrent
// use on a fully built Migrator.
type Migrator struct {
	codec codec.Codec
	keys  Keys // registry-wide key defaults; zero fields mean unset
	paths map[string]*Path
}

// Option configures a Migrator at construction.
type Option func(*Migrator)

// WithCodec sets the codec used by the byte-level load/save methods.
// Defaults to JSON.
func WithCodec(c codec.Codec) Option {
	return func(m *Migrator) { m.codec = c }
}

// WithDefaultKeys sets registry-wide default tag key names, overriding
// the package defaults for every path that does not carry its own
// override.
func WithDefaultKeys(versionKey, dataKey string) Option {
	return func(m *Migrator) { m.keys = Keys{Version: versionKey, Data: dataKey} }
}

// New creates an empty migrator.
func New(opts ...Option) *Migrator {
	m := &Migrator{
		codec: codec.JSON(),
		paths: make(map[string]*Path),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register validates a path and inserts it into the registry.
//
// Validation order:
//  1. Cycle check: the version list must not repeat a version.
//  2. Ordering check: every version must parse as strict semver and each
//     adjacent pair must be strictly increasing.
//  3. Key resolution: path override > migrator defaults > package
//     defaults, stored on the path so load/save never resolve again.
//
// An invalid path is never partially registered. Registering an entity
// name twice replaces the earlier path.
func (m *Migrator) Register(p *Path) error {
	if p == nil || p.finalize == nil {
		return &BuildError{Reason: "path is nil or was not built by the builder"}
	}

	// Cycle check: first duplicate wins the error.
	seen := make(map[string]struct{}, len(p.versions))
	for _, v := range p.versions {
		if _, dup := seen[v]; dup {
			return &CycleError{Entity: p.entity, Path: strings.Join(p.versions, " -> ")}
		}
		seen[v] = struct{}{}
	}

	// Ordering check: strict semver, strictly increasing.
	parsed := make([]*semver.Version, len(p.versions))
	for i, v := range p.versions {
		sv, err := semver.StrictNewVersion(v)
		if err != nil {
			from, to := v, v
			if i > 0 {
				from = p.versions[i-1]
			}
			return &VersionOrderError{Entity: p.entity, From: from, To: to}
		}
		parsed[i] = sv
	}
	for i := 0; i+1 < len(parsed); i++ {
		if !parsed[i].LessThan(parsed[i+1]) {
			return &VersionOrderError{
				Entity: p.entity,
				From:   p.versions[i],
				To:     p.versions[i+1],
			}
		}
	}

	// Key resolution, fixed here for the path's lifetime.
	override := Keys{}
	if p.keyOverride != nil {
		override = *p.keyOverride
	}
	p.keys = override.overlay(m.keys).overlay(DefaultKeys())

	m.paths[p.entity] = p
	return nil
}

// Entities returns the registered entity names in sorted order.
func (m *Migrator) Entities() []string {
	out := make([]string, 0, len(m.paths))
	for name := range m.paths {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// PathFor returns the registered path for an entity.
func (m *Migrator) PathFor(entity string) (*Path, error) {
	p, ok := m.paths[entity]
	if !ok {
		return nil, &EntityNotFoundError{Entity: entity}
	}
	return p, nil
}

// Load decodes a nested tagged value and migrates it to the entity's
// domain value: {"version": "...", "data": {...}} with the path's
// resolved key names.
func (m *Migrator) Load(entity string, data []byte) (any, error) {
	p, err := m.PathFor(entity)
	if err != nil {
		return nil, err
	}

	doc, err := m.decode(data)
	if err != nil {
		return nil, err
	}

	version, payload, err := splitNested(doc, p.keys)
	if err != nil {
		return nil, err
	}
	return m.walk(p, version, payload)
}

// LoadFlat decodes a flat tagged value ({"version": "...", ...fields})
// and migrates it to the entity's domain value.
func (m *Migrator) LoadFlat(entity string, data []byte) (any, error) {
	// Entity lookup comes first so an unregistered name fails before any
	// decoding work.
	if _, err := m.PathFor(entity); err != nil {
		return nil, err
	}

	doc, err := m.decode(data)
	if err != nil {
		return nil, err
	}
	return m.LoadFlatValue(entity, doc)
}

// LoadValue migrates an already-decoded nested tagged value. Top-level
// fields of the input map are not modified; nested sub-maps are handed
// to the steps as-is, so a step that mutates them in place writes
// through to the caller's document.
func (m *Migrator) LoadValue(entity string, doc map[string]any) (any, error) {
	p, err := m.PathFor(entity)
	if err != nil {
		return nil, err
	}

	version, payload, err := splitNested(doc, p.keys)
	if err != nil {
		return nil, err
	}
	return m.walk(p, version, payload)
}

// LoadFlatValue migrates an already-decoded flat tagged value. Top-level
// fields of the input map are not modified; nested sub-maps are shared
// with the steps, as with LoadValue.
func (m *Migrator) LoadFlatValue(entity string, doc map[string]any) (any, error) {
	p, err := m.PathFor(entity)
	if err != nil {
		return nil, err
	}

	version, payload, err := splitFlat(doc, p.keys)
	if err != nil {
		return nil, err
	}
	return m.walk(p, version, payload)
}

// LoadSlice decodes an array of nested tagged values and migrates each
// element. The batch is all-or-nothing: the first element failure fails
// the whole call.
func (m *Migrator) LoadSlice(entity string, data []byte) ([]any, error) {
	if _, err := m.PathFor(entity); err != nil {
		return nil, err
	}

	var raw []any
	if err := m.codec.Unmarshal(data, &raw); err != nil {
		return nil, &DeserializationError{Reason: "invalid document", Err: err}
	}

	out := make([]any, 0, len(raw))
	for i, elem := range raw {
		doc, ok := elem.(map[string]any)
		if !ok {
			return nil, &DeserializationError{
				Reason: fmt.Sprintf("element %d is %T, want an object", i, elem),
			}
		}
		domain, err := m.LoadValue(entity, doc)
		if err != nil {
			return nil, err
		}
		out = append(out, domain)
	}
	return out, nil
}

// Save serializes an already-versioned payload in the nested shape,
// stamping the path's resolved keys. Save never walks the chain; there
// is nothing to migrate going forward.
func (m *Migrator) Save(entity, version string, payload map[string]any) ([]byte, error) {
	tagged, err := m.SaveValue(entity, version, payload)
	if err != nil {
		return nil, err
	}
	return m.encode(tagged)
}

// SaveFlat serializes an already-versioned payload in the flat shape.
func (m *Migrator) SaveFlat(entity, version string, payload map[string]any) ([]byte, error) {
	tagged, err := m.SaveFlatValue(entity, version, payload)
	if err != nil {
		return nil, err
	}
	return m.encode(tagged)
}

// SaveValue returns the nested tagged value for an already-versioned
// payload without serializing it.
func (m *Migrator) SaveValue(entity, version string, payload map[string]any) (map[string]any, error) {
	p, err := m.PathFor(entity)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		p.keys.Version: version,
		p.keys.Data:    payload,
	}, nil
}

// SaveFlatValue returns the flat tagged value for an already-versioned
// payload without serializing it. The input map is not modified.
func (m *Migrator) SaveFlatValue(entity, version string, payload map[string]any) (map[string]any, error) {
	p, err := m.PathFor(entity)
	if err != nil {
		return nil, err
	}
	tagged := maps.Clone(payload)
	if tagged == nil {
		tagged = make(map[string]any, 1)
	}
	tagged[p.keys.Version] = version
	return tagged, nil
}

// SaveDomain converts a domain value to the terminal version via the
// path's reverse transform and serializes it in the nested shape. Paths
// registered with Into (no reverse transform) cannot save domain values.
func (m *Migrator) SaveDomain(entity string, domain any) ([]byte, error) {
	tagged, err := m.SaveDomainValue(entity, domain)
	if err != nil {
		return nil, err
	}
	return m.encode(tagged)
}

// SaveDomainFlat is SaveDomain in the flat shape.
func (m *Migrator) SaveDomainFlat(entity string, domain any) ([]byte, error) {
	tagged, err := m.SaveDomainFlatValue(entity, domain)
	if err != nil {
		return nil, err
	}
	return m.encode(tagged)
}

// SaveDomainValue returns the nested tagged value for a domain value.
func (m *Migrator) SaveDomainValue(entity string, domain any) (map[string]any, error) {
	p, payload, err := m.reverse(entity, domain)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		p.keys.Version: p.Terminal(),
		p.keys.Data:    payload,
	}, nil
}

// SaveDomainFlatValue returns the flat tagged value for a domain value.
func (m *Migrator) SaveDomainFlatValue(entity string, domain any) (map[string]any, error) {
	p, payload, err := m.reverse(entity, domain)
	if err != nil {
		return nil, err
	}
	tagged := maps.Clone(payload)
	if tagged == nil {
		tagged = make(map[string]any, 1)
	}
	tagged[p.keys.Version] = p.Terminal()
	return tagged, nil
}

// SaveDomainSlice serializes a batch of domain values as an array of
// nested tagged values. All-or-nothing: the first element failure fails
// the whole call.
func (m *Migrator) SaveDomainSlice(entity string, domains []any) ([]byte, error) {
	arr := make([]any, 0, len(domains))
	for _, d := range domains {
		tagged, err := m.SaveDomainValue(entity, d)
		if err != nil {
			return nil, err
		}
		arr = append(arr, tagged)
	}
	return m.encode(arr)
}

// reverse resolves the path and applies its reverse transform.
func (m *Migrator) reverse(entity string, domain any) (*Path, map[string]any, error) {
	p, err := m.PathFor(entity)
	if err != nil {
		return nil, nil, err
	}
	if p.reverse == nil {
		return nil, nil, &SerializationError{
			Reason: fmt.Sprintf("entity %q registered without a reverse transform", entity),
		}
	}
	payload, err := p.reverse(domain)
	if err != nil {
		return nil, nil, &SerializationError{Reason: "reverse transform failed", Err: err}
	}
	return p, payload, nil
}

// walk advances the payload along the path's version list from the tagged
// version to the terminal version, then finalizes into the domain value.
//
// The walk advances by consulting the version list, never by re-reading a
// tag out of a step's output, so steps may return raw untagged payloads.
func (m *Migrator) walk(p *Path, version string, payload map[string]any) (any, error) {
	idx := slices.Index(p.versions, version)
	if idx < 0 {
		return nil, &PathNotDefinedError{Entity: p.entity, Version: version}
	}

	for i := idx; i+1 < len(p.versions); i++ {
		out, err := p.steps[p.versions[i]](payload)
		if err != nil {
			return nil, &StepError{From: p.versions[i], To: p.versions[i+1], Err: err}
		}
		payload = out
	}

	domain, err := p.finalize(payload)
	if err != nil {
		return nil, &StepError{From: p.Terminal(), To: "domain", Err: err}
	}
	return domain, nil
}

func (m *Migrator) decode(data []byte) (map[string]any, error) {
	var doc map[string]any
	if err := m.codec.Unmarshal(data, &doc); err != nil {
		return nil, &DeserializationError{Reason: "invalid document", Err: err}
	}
	return doc, nil
}

func (m *Migrator) encode(v any) ([]byte, error) {
	data, err := m.codec.Marshal(v)
	if err != nil {
		return nil, &SerializationError{Reason: "encoding tagged value", Err: err}
	}
	return data, nil
}

// splitNested extracts the version tag and the payload subtree from a
// nested tagged value. The payload is shallow-copied: steps can add and
// replace top-level fields without touching the caller's map, but
// nested sub-maps remain shared.
func splitNested(doc map[string]any, keys Keys) (string, map[string]any, error) {
	version, err := versionTag(doc, keys)
	if err != nil {
		return "", nil, err
	}

	raw, ok := doc[keys.Data]
	if !ok {
		return "", nil, &DeserializationError{
			Reason: fmt.Sprintf("missing %q field", keys.Data),
		}
	}
	payload, ok := raw.(map[string]any)
	if !ok {
		return "", nil, &DeserializationError{
			Reason: fmt.Sprintf("%q field is %T, want an object", keys.Data, raw),
		}
	}
	return version, maps.Clone(payload), nil
}

// splitFlat extracts the version tag from a flat tagged value; the
// payload is everything else, shallow-copied out of the caller's map
// (nested sub-maps remain shared).
func splitFlat(doc map[string]any, keys Keys) (string, map[string]any, error) {
	version, err := versionTag(doc, keys)
	if err != nil {
		return "", nil, err
	}

	payload := maps.Clone(doc)
	delete(payload, keys.Version)
	return version, payload, nil
}

func versionTag(doc map[string]any, keys Keys) (string, error) {
	raw, ok := doc[keys.Version]
	if !ok {
		return "", &DeserializationError{
			Reason: fmt.Sprintf("missing %q field", keys.Version),
		}
	}
	version, ok := raw.(string)
	if !ok {
		return "", &DeserializationError{
			Reason: fmt.Sprintf("%q field is %T, want a string", keys.Version, raw),
		}
	}
	return version, nil
}
