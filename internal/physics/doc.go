// Package physics models the Quanser Qube-Servo rotary pendulum.
//
// [RotaryPendulum] implements [dynamo.System] with state
// (theta, alpha, theta_dot, alpha_dot) and a single motor voltage input.
// Alpha is zero with the pendulum upright. It also implements
// [dynamo.Hamiltonian] and [dynamo.Configurable].
package physics
