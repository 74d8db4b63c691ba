// Package control provides the policies that drive the rotary pendulum.
//
// Every policy implements [dynamo.Controller] and is built through the
// registry so the CLI and the driver only deal in [Kind] values:
//
//   - [NoOp]: zero voltage
//   - [Random]: uniform samples inside the action space
//   - [FlipUp]: energy-pumping swing-up handing over to [Hold] near upright
//   - [Hold]: linear state feedback around the upright equilibrium
//
// # Usage
//
//	kind, _ := control.ParseKind("flip")
//	ctrl, err := control.New(kind, env, 1000, control.Options{})
//	u := ctrl.Action(obs)
//
// Controllers are bound to the step rate at construction; feedback policies
// refuse rates below [MinFeedbackFrequency].
package control
