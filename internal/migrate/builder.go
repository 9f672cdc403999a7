package migrate

// StepFunc transforms a payload at one version into the payload at the
// next version in the path. Steps must be pure and total over well-formed
// input; a failure is a data error, reported to the caller wrapped in a
// *StepError. Steps are only ever invoked by the chain walk.
type StepFunc func(payload map[string]any) (map[string]any, error)

// FinalizeFunc converts the terminal-version payload into the domain
// value.
type FinalizeFunc func(payload map[string]any) (any, error)

// ReverseFunc converts a domain value back into the terminal-version
// payload, enabling save-by-domain-value round trips.
type ReverseFunc func(domain any) (map[string]any, error)

// Path is one entity's validated migration chain: the ordered version
// list, one step per non-terminal version, the finalize transform, and
// optionally a reverse transform. Paths are constructed by the builder,
// frozen by Migrator.Register, and read-only afterwards.
type Path struct {
	entity      string
	versions    []string
	steps       map[string]StepFunc
	finalize    FinalizeFunc
	reverse     ReverseFunc
	keyOverride *Keys

	// keys holds the resolved tag key names; set by Register.
	keys Keys
}

// Entity returns the registry key this path is registered under.
func (p *Path) Entity() string { return p.entity }

// Terminal returns the last (current) version of the chain.
func (p *Path) Terminal() string { return p.versions[len(p.versions)-1] }

// Versions returns a copy of the ordered version list.
func (p *Path) Versions() []string {
	out := make([]string, len(p.versions))
	copy(out, p.versions)
	return out
}

// Keys returns the resolved tag key names. Only meaningful after the path
// has been registered.
func (p *Path) Keys() Keys { return p.keys }

// SupportsDomainSave reports whether the path carries a reverse transform.
func (p *Path) SupportsDomainSave() bool { return p.reverse != nil }

// Builder assembles a Path in declaration order. Stage violations are
// recorded rather than panicking and surface as a *BuildError from the
// terminal Into/IntoWithSave call, so a misconfigured path fails fast at
// startup without taking the process down. A builder produces at most
// one path: any call after a successful Into or IntoWithSave is a stage
// violation.
type Builder struct {
	entity   string
	keys     *Keys
	versions []string
	steps    map[string]StepFunc
	hasFrom  bool
	done     bool
	err      error
}

// Define starts a migration path declaration for the named entity.
func Define(entity string) *Builder {
	b := &Builder{
		entity: entity,
		steps:  make(map[string]StepFunc),
	}
	if entity == "" {
		b.fail("entity name must not be empty")
	}
	return b
}

// WithKeys overrides the tag key names for this path. Must be called
// before From.
func (b *Builder) WithKeys(versionKey, dataKey string) *Builder {
	switch {
	case b.done:
		b.fail("WithKeys declared after Into")
	case b.hasFrom:
		b.fail("WithKeys must be called before From")
	case versionKey == "" || dataKey == "":
		b.fail("key names must not be empty")
	default:
		b.keys = &Keys{Version: versionKey, Data: dataKey}
	}
	return b
}

// From declares the earliest version of the chain.
func (b *Builder) From(version string) *Builder {
	switch {
	case b.done:
		b.fail("From declared after Into")
	case b.hasFrom:
		b.fail("From declared twice")
	case version == "":
		b.fail("starting version must not be empty")
	default:
		b.hasFrom = true
		b.versions = append(b.versions, version)
	}
	return b
}

// Step declares a transform from the most recently declared version to
// next. Steps chain: each call advances the path by one version.
func (b *Builder) Step(next string, fn StepFunc) *Builder {
	switch {
	case b.done:
		b.fail("Step declared after Into")
	case !b.hasFrom:
		b.fail("Step declared before From")
	case next == "":
		b.fail("step version must not be empty")
	case fn == nil:
		b.fail("step function must not be nil")
	default:
		from := b.versions[len(b.versions)-1]
		b.steps[from] = fn
		b.versions = append(b.versions, next)
	}
	return b
}

// Into finalizes the path with a domain conversion. The returned path
// does not support saving by domain value; use IntoWithSave for that.
func (b *Builder) Into(finalize FinalizeFunc) (*Path, error) {
	return b.build(finalize, nil)
}

// IntoWithSave finalizes the path with a domain conversion and a reverse
// transform from the domain value back to the terminal version, enabling
// round-trip saves.
func (b *Builder) IntoWithSave(finalize FinalizeFunc, reverse ReverseFunc) (*Path, error) {
	if reverse == nil {
		b.fail("reverse transform must not be nil")
	}
	return b.build(finalize, reverse)
}

func (b *Builder) build(finalize FinalizeFunc, reverse ReverseFunc) (*Path, error) {
	if b.done {
		b.fail("Into declared twice")
	}
	if !b.hasFrom {
		b.fail("Into declared before From")
	}
	if finalize == nil {
		b.fail("finalize function must not be nil")
	}
	if b.err != nil {
		return nil, b.err
	}

	b.done = true
	return &Path{
		entity:      b.entity,
		versions:    b.versions,
		steps:       b.steps,
		finalize:    finalize,
		reverse:     reverse,
		keyOverride: b.keys,
	}, nil
}

// fail records the first stage violation; later violations are dropped so
// the reported error points at the root cause.
func (b *Builder) fail(reason string) {
	if b.err == nil {
		b.err = &BuildError{Entity: b.entity, Reason: reason}
	}
}
