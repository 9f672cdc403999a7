package migrate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopFinalize(payload map[string]any) (any, error) { return payload, nil }

func noopStep(payload map[string]any) (map[string]any, error) { return payload, nil }

// TestBuilder verifies the staged builder accepts well-ordered
// declarations and captures the resulting chain.
func TestBuilder(t *testing.T) {
	t.Run("single version path", func(t *testing.T) {
		p, err := Define("task").From("1.0.0").Into(noopFinalize)
		require.NoError(t, err)

		assert.Equal(t, "task", p.Entity())
		assert.Equal(t, []string{"1.0.0"}, p.Versions())
		assert.Equal(t, "1.0.0", p.Terminal())
		assert.False(t, p.SupportsDomainSave())
	})

	t.Run("multi step path", func(t *testing.T) {
		p, err := Define("task").
			From("1.0.0").
			Step("1.1.0", noopStep).
			Step("2.0.0", noopStep).
			Into(noopFinalize)
		require.NoError(t, err)

		assert.Equal(t, []string{"1.0.0", "1.1.0", "2.0.0"}, p.Versions())
		assert.Equal(t, "2.0.0", p.Terminal())
	})

	t.Run("with save", func(t *testing.T) {
		p, err := Define("task").
			From("1.0.0").
			IntoWithSave(noopFinalize, func(any) (map[string]any, error) { return nil, nil })
		require.NoError(t, err)

		assert.True(t, p.SupportsDomainSave())
	})

	t.Run("versions returns a copy", func(t *testing.T) {
		p, err := Define("task").From("1.0.0").Into(noopFinalize)
		require.NoError(t, err)

		p.Versions()[0] = "mutated"
		assert.Equal(t, []string{"1.0.0"}, p.Versions())
	})
}

// TestBuilderStaging verifies every out-of-order call sequence surfaces a
// BuildError at the terminal call instead of panicking.
func TestBuilderStaging(t *testing.T) {
	cases := []struct {
		name   string
		build  func() (*Path, error)
		reason string
	}{
		{
			name:   "step before from",
			build:  func() (*Path, error) { return Define("e").Step("2.0.0", noopStep).Into(noopFinalize) },
			reason: "Step declared before From",
		},
		{
			name:   "into before from",
			build:  func() (*Path, error) { return Define("e").Into(noopFinalize) },
			reason: "Into declared before From",
		},
		{
			name:   "from twice",
			build:  func() (*Path, error) { return Define("e").From("1.0.0").From("2.0.0").Into(noopFinalize) },
			reason: "From declared twice",
		},
		{
			name: "keys after from",
			build: func() (*Path, error) {
				return Define("e").From("1.0.0").WithKeys("v", "d").Into(noopFinalize)
			},
			reason: "WithKeys must be called before From",
		},
		{
			name:   "nil finalize",
			build:  func() (*Path, error) { return Define("e").From("1.0.0").Into(nil) },
			reason: "finalize function must not be nil",
		},
		{
			name: "nil reverse",
			build: func() (*Path, error) {
				return Define("e").From("1.0.0").IntoWithSave(noopFinalize, nil)
			},
			reason: "reverse transform must not be nil",
		},
		{
			name:   "nil step function",
			build:  func() (*Path, error) { return Define("e").From("1.0.0").Step("2.0.0", nil).Into(noopFinalize) },
			reason: "step function must not be nil",
		},
		{
			name:   "empty entity",
			build:  func() (*Path, error) { return Define("").From("1.0.0").Into(noopFinalize) },
			reason: "entity name must not be empty",
		},
		{
			name: "into twice",
			build: func() (*Path, error) {
				b := Define("e").From("1.0.0")
				if _, err := b.Into(noopFinalize); err != nil {
					return nil, err
				}
				return b.Into(noopFinalize)
			},
			reason: "Into declared twice",
		},
		{
			name: "step after into",
			build: func() (*Path, error) {
				b := Define("e").From("1.0.0")
				if _, err := b.Into(noopFinalize); err != nil {
					return nil, err
				}
				return b.Step("2.0.0", noopStep).Into(noopFinalize)
			},
			reason: "Step declared after Into",
		},
		{
			name: "from after into",
			build: func() (*Path, error) {
				b := Define("e").From("1.0.0")
				if _, err := b.Into(noopFinalize); err != nil {
					return nil, err
				}
				return b.From("2.0.0").Into(noopFinalize)
			},
			reason: "From declared after Into",
		},
		{
			name: "keys after into",
			build: func() (*Path, error) {
				b := Define("e").From("1.0.0")
				if _, err := b.Into(noopFinalize); err != nil {
					return nil, err
				}
				return b.WithKeys("v", "d").Into(noopFinalize)
			},
			reason: "WithKeys declared after Into",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := tc.build()
			assert.Nil(t, p)

			var be *BuildError
			require.True(t, errors.As(err, &be), "want BuildError, got %v", err)
			assert.Equal(t, tc.reason, be.Reason)
		})
	}
}

// TestBuilderFinalizeIsTerminal verifies a finalized builder rejects
// further declarations without disturbing the path it already produced.
func TestBuilderFinalizeIsTerminal(t *testing.T) {
	b := Define("e").From("1.0.0").Step("1.1.0", noopStep)

	p, err := b.Into(noopFinalize)
	require.NoError(t, err)
	require.Equal(t, []string{"1.0.0", "1.1.0"}, p.Versions())

	_, err = b.Step("2.0.0", noopStep).Into(noopFinalize)
	var be *BuildError
	require.True(t, errors.As(err, &be))

	// The first path is unaffected by the rejected follow-up calls.
	assert.Equal(t, []string{"1.0.0", "1.1.0"}, p.Versions())
	assert.Equal(t, "1.1.0", p.Terminal())
}

// TestBuilderReportsFirstViolation verifies a broken sequence reports the
// root cause, not a follow-on violation.
func TestBuilderReportsFirstViolation(t *testing.T) {
	_, err := Define("e").
		Step("2.0.0", noopStep). // first violation
		From("1.0.0").
		From("3.0.0"). // follow-on violation
		Into(noopFinalize)

	var be *BuildError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, "Step declared before From", be.Reason)
}
