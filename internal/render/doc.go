// Package render draws rotary pendulum frames for a human.
//
// A [Surface] receives one [Frame] per loop iteration and drops the ones that
// arrive faster than its frame rate:
//
//   - [Term]: ANSI character canvas written to a terminal
//   - [TUI]: bubbletea program with a braille canvas, an alpha history chart
//     and a stats panel
//   - [Window]: raylib 3D scene
//
// Interactive surfaces close [Surface.Done] when the user quits so the caller
// can stop the loop.
package render
