package control

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/qubesim/internal/dynamo"
	"github.com/san-kum/qubesim/internal/physics"
)

type Kind int

const (
	NoOp Kind = iota
	Random
	FlipUp
	Hold
)

// MinFeedbackFrequency is the slowest step rate the feedback policies are
// tuned for.
const MinFeedbackFrequency = 50.0

var (
	ErrUnknownKind          = errors.New("control: unknown controller")
	ErrUnsupportedFrequency = errors.New("control: frequency not supported by controller")
)

// Options are the knobs shared by every factory.
type Options struct {
	// Seed for stochastic policies; 0 picks a time-based seed.
	Seed uint64
}

// Factory builds a controller bound to env and the step rate.
type Factory func(env dynamo.Environment, freq float64, opts Options) (dynamo.Controller, error)

type entry struct {
	name    string
	factory Factory
}

var registry = map[Kind]entry{}

// Register installs the factory for kind under name, replacing any previous
// registration. Not safe for concurrent use with New.
func Register(kind Kind, name string, f Factory) {
	registry[kind] = entry{name: name, factory: f}
}

func init() {
	Register(NoOp, "none", newNone)
	Register(Random, "rand", newRandom)
	Register(FlipUp, "flip", newFlipUp)
	Register(Hold, "hold", newHold)
}

func (k Kind) String() string {
	if e, ok := registry[k]; ok {
		return e.name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func ParseKind(s string) (Kind, error) {
	for k, e := range registry {
		if strings.EqualFold(s, e.name) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownKind, s, strings.Join(Names(), ", "))
}

// Names lists the registered controller names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for _, e := range registry {
		names = append(names, e.name)
	}
	sort.Strings(names)
	return names
}

// New builds the controller registered for kind.
func New(kind Kind, env dynamo.Environment, freq float64, opts Options) (dynamo.Controller, error) {
	e, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	if err := dynamo.ValidateFrequency(freq); err != nil {
		return nil, err
	}
	return e.factory(env, freq, opts)
}

func requireFeedbackRate(kind Kind, freq float64) error {
	if freq < MinFeedbackFrequency {
		return fmt.Errorf("%w: %s needs at least %.0f Hz, got %v", ErrUnsupportedFrequency, kind, MinFeedbackFrequency, freq)
	}
	return nil
}

// modelOf returns the physical model behind env, or the default Qube-Servo
// parameters when env does not expose one.
func modelOf(env dynamo.Environment) *physics.RotaryPendulum {
	if m, ok := env.(interface{ Model() *physics.RotaryPendulum }); ok && m.Model() != nil {
		return m.Model()
	}
	return physics.NewRotaryPendulum()
}
