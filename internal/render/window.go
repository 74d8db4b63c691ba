package render

import (
	"fmt"
	"sync"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// sceneScale converts metres to raylib world units.
const sceneScale = 40

// Window draws frames in a raylib window. Every method must be called from
// the goroutine that created it, which must be locked to its OS thread.
type Window struct {
	camera rl.Camera3D
	gate   gate
	done   chan struct{}
	once   sync.Once
	open   bool
}

func NewWindow(width, height, fps int) *Window {
	rl.SetTraceLogLevel(rl.LogWarning)
	rl.SetConfigFlags(rl.FlagMsaa4xHint)
	rl.InitWindow(int32(width), int32(height), "qubesim")

	return &Window{
		camera: rl.NewCamera3D(
			rl.NewVector3(7, 6, 9),
			rl.NewVector3(0, 0.5, 0),
			rl.NewVector3(0, 1, 0),
			45.0,
			rl.CameraPerspective,
		),
		gate: newGate(fps),
		done: make(chan struct{}),
		open: true,
	}
}

func toWorld(v Vec3) rl.Vector3 {
	return rl.NewVector3(float32(v.X*sceneScale), float32(v.Y*sceneScale), float32(v.Z*sceneScale))
}

func (w *Window) Draw(f Frame) error {
	if !w.open {
		return nil
	}
	if rl.WindowShouldClose() {
		w.once.Do(func() { close(w.done) })
		return nil
	}
	if !w.gate.allow() {
		return nil
	}

	arm, bob := f.Rig()
	pivot := rl.NewVector3(0, 0, 0)
	armTip, bobTip := toWorld(arm), toWorld(bob)

	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(18, 18, 24, 255))

	rl.BeginMode3D(w.camera)
	rl.DrawGrid(20, 1)
	rl.DrawCube(rl.NewVector3(0, -2, 0), 4, 4, 4, rl.DarkGray)
	rl.DrawCylinderEx(pivot, armTip, 0.15, 0.15, 12, rl.LightGray)
	rl.DrawCylinderEx(armTip, bobTip, 0.12, 0.12, 12, rl.Red)
	rl.DrawSphere(bobTip, 0.3, rl.White)
	rl.EndMode3D()

	rl.DrawText(fmt.Sprintf("%s  episode %d  t=%.2fs  %s", f.Backend, f.Episode, f.Time, Phase(f.Alpha)), 12, 12, 20, rl.RayWhite)
	rl.DrawText(fmt.Sprintf("theta %+6.1f  alpha %+6.1f  V %+5.2f", degrees(f.Theta), degrees(f.Alpha), f.Voltage), 12, 38, 18, rl.Gray)
	rl.EndDrawing()
	return nil
}

func (w *Window) Done() <-chan struct{} { return w.done }

func (w *Window) Close() error {
	if w.open {
		rl.CloseWindow()
		w.open = false
	}
	w.once.Do(func() { close(w.done) })
	return nil
}
