// Package driver runs the fixed-rate control loop that couples one
// environment with one controller.
//
// Each iteration asks the controller for an action on the latest
// observation, steps the environment, renders it, and resets the episode
// when the [Schedule] says so:
//
//	d, err := driver.Open(cfg, newEnv, newCtrl)
//	if err != nil { ... }
//	defer d.Close()
//	err = d.Run(ctx) // returns ctx.Err() once cancelled
//
// The loop is synchronous. Wall-clock pacing is delegated to a [Pacer].
package driver
