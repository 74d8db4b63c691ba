package qube

import (
	"fmt"
	"strings"

	"github.com/san-kum/qubesim/internal/dynamo"
	"github.com/san-kum/qubesim/internal/integrators"
)

type Backend int

const (
	Primary Backend = iota
	Alternate
)

var backendNames = map[Backend]string{
	Primary:   "primary",
	Alternate: "alternate",
}

func (b Backend) String() string {
	if name, ok := backendNames[b]; ok {
		return name
	}
	return fmt.Sprintf("backend(%d)", int(b))
}

func ParseBackend(s string) (Backend, error) {
	for b, name := range backendNames {
		if strings.EqualFold(s, name) {
			return b, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown backend %q", dynamo.ErrBackendUnavailable, s)
}

// EngineFactory builds the integrator a backend advances the model with.
type EngineFactory func() dynamo.Integrator

// AlternateSubsteps is the number of inner steps per control period on the
// alternate backend.
const AlternateSubsteps = 4

var engines = map[Backend]EngineFactory{
	Primary: func() dynamo.Integrator { return integrators.NewRK4() },
	Alternate: func() dynamo.Integrator {
		return integrators.NewSubstepped(integrators.NewSemiImplicitEuler(), AlternateSubsteps)
	},
}

// RegisterBackend installs or replaces the engine behind b. It must be
// called before environments are created concurrently.
func RegisterBackend(b Backend, name string, f EngineFactory) {
	engines[b] = f
	backendNames[b] = name
}

func engineFor(b Backend) (dynamo.Integrator, error) {
	f, ok := engines[b]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dynamo.ErrBackendUnavailable, b)
	}
	return f(), nil
}
