// Package qube implements the rotary pendulum environment driven by the
// control loop.
//
// An [Env] couples the [physics.RotaryPendulum] model with a numerical
// backend selected by [Backend]:
//
//   - [Primary]: one RK4 step per control period
//   - [Alternate]: sub-stepped semi-implicit Euler, the update rule of
//     rigid-body engines
//
// Additional backends can be installed with [RegisterBackend].
//
// Observations are [theta, alpha, theta_dot, alpha_dot] with alpha measured
// from upright and wrapped into (-pi, pi]. Actions are a single motor
// voltage clipped to [-MaxVoltage, MaxVoltage].
package qube
