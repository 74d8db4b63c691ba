// Package dynamo provides the core primitives shared by the simulator.
//
// The package defines the interfaces that connect the control loop to its
// collaborators:
//
//   - [State]: observation / state vector
//   - [Control]: action vector applied for one step
//   - [System]: ODE system (dX/dt = f(X, u, t))
//   - [Integrator]: numerical stepper for a [System]
//   - [Environment]: reset/step/render capability driven by the loop
//   - [Controller]: policy mapping an observation to an action
//   - [Box]: bounded action space
//
// # Example
//
//	env, _ := qube.New(qube.Options{Frequency: 1000})
//	obs, _ := env.Reset()
//	tr, _ := env.Step(dynamo.Control{0.5})
//
// # Thread Safety
//
// Environments and controllers are NOT thread-safe. The driver loop owns
// both handles exclusively for the lifetime of a run.
package dynamo
