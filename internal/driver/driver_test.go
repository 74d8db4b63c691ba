package driver_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/qubesim/internal/control"
	"github.com/san-kum/qubesim/internal/driver"
	"github.com/san-kum/qubesim/internal/dynamo"
	"github.com/san-kum/qubesim/internal/logging"
	"github.com/san-kum/qubesim/internal/qube"
)

var _ = Describe("Driver", func() {
	var (
		calls []string
		env   *countingEnv
		ctrl  *echoController
		cfg   driver.Config
	)

	newEnv := func() (dynamo.Environment, error) {
		calls = append(calls, "new env")
		return env, nil
	}
	newCtrl := func(e dynamo.Environment, freq float64) (dynamo.Controller, error) {
		calls = append(calls, "new controller")
		Expect(e).To(BeIdenticalTo(env))
		return ctrl, nil
	}

	BeforeEach(func() {
		calls = nil
		env = newCountingEnv(&calls)
		ctrl = &echoController{}
		cfg = driver.Config{Frequency: 1000, RenderMode: dynamo.RenderHuman}
	})

	Describe("Open", func() {
		It("initialises in order: environment, render mode, controller, reset", func() {
			d, err := driver.Open(cfg, newEnv, newCtrl)
			Expect(err).NotTo(HaveOccurred())
			Expect(calls).To(Equal([]string{"new env", "render:human", "new controller", "reset"}))
			Expect(d.Step()).To(Equal(0))
			Expect(d.Episode()).To(Equal(1))
			Expect(ctrl.seen).To(BeEmpty())
		})

		DescribeTable("rejects unusable frequencies",
			func(hz float64) {
				cfg.Frequency = hz
				_, err := driver.Open(cfg, newEnv, newCtrl)
				Expect(err).To(MatchError(dynamo.ErrInvalidFrequency))
				Expect(calls).To(BeEmpty())
			},
			Entry("zero", 0.0),
			Entry("negative", -1000.0),
		)

		It("closes the environment when the controller cannot be built", func() {
			_, err := driver.Open(cfg, newEnv, func(dynamo.Environment, float64) (dynamo.Controller, error) {
				return nil, errBoom
			})
			Expect(err).To(MatchError(errBoom))
			Expect(env.closed).To(BeTrue())
		})

		It("surfaces render failures", func() {
			env.renderErr = dynamo.ErrNoSurface
			_, err := driver.Open(cfg, newEnv, newCtrl)
			Expect(err).To(MatchError(dynamo.ErrNoSurface))
		})
	})

	Describe("Run", func() {
		It("resets at iterations 0 and 3000 over 3001 iterations at 1000 Hz", func() {
			rec := &resetRecorder{}
			cfg.MaxSteps = 3001
			cfg.Observers = []driver.Observer{rec}

			d, err := driver.Open(cfg, newEnv, newCtrl)
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Run(context.Background())).To(Succeed())

			Expect(rec.steps).To(Equal([]int{0, 3000}))
			Expect(rec.episodes).To(Equal([]int{2, 3}))
			Expect(env.resets).To(Equal(3))
			Expect(env.steps).To(Equal(3001))
			Expect(d.Step()).To(Equal(3001))
			Expect(rec.stepped).To(Equal(3001))
		})

		It("renders once per iteration", func() {
			cfg.MaxSteps = 10
			d, _ := driver.Open(cfg, newEnv, newCtrl)
			Expect(d.Run(context.Background())).To(Succeed())
			Expect(env.renders).To(Equal(11))
		})

		It("always hands the controller the newest observation", func() {
			cfg.MaxSteps = 5
			d, _ := driver.Open(cfg, newEnv, newCtrl)
			Expect(d.Run(context.Background())).To(Succeed())

			// 1: initial reset. Step 0 yields 2, then the step-0 reset
			// replaces it with 3. Later steps yield 4, 5, 6.
			Expect(ctrl.seen).To(Equal([]float64{1, 3, 4, 5, 6}))
			Expect(d.Observation()[0]).To(Equal(7.0))
		})

		It("follows the loop order step, render, reset", func() {
			cfg.MaxSteps = 2
			d, _ := driver.Open(cfg, newEnv, newCtrl)
			calls = nil
			Expect(d.Run(context.Background())).To(Succeed())
			Expect(calls).To(Equal([]string{
				"step", "render:human", "reset",
				"step", "render:human",
			}))
		})

		It("returns the context error once cancelled", func() {
			d, _ := driver.Open(cfg, newEnv, newCtrl)
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			Expect(d.Run(ctx)).To(MatchError(context.Canceled))
			Expect(env.steps).To(BeZero())
		})

		It("stops on a paced run when the deadline passes", func() {
			cfg.Pacer = driver.NewRatePacer(100)
			d, _ := driver.Open(cfg, newEnv, newCtrl)
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			err := d.Run(ctx)
			Expect(errors.Is(err, context.DeadlineExceeded)).To(BeTrue())
			Expect(env.steps).To(BeNumerically("<", 20))
		})

		It("wraps environment failures with the step index", func() {
			env.failAt = 4
			d, _ := driver.Open(cfg, newEnv, newCtrl)

			err := d.Run(context.Background())
			var stepErr *driver.StepError
			Expect(errors.As(err, &stepErr)).To(BeTrue())
			Expect(stepErr.Step).To(Equal(4))
			Expect(err).To(MatchError(errBoom))
		})

		DescribeTable("logs every transition only at trace level",
			func(level string, want int) {
				var buf bytes.Buffer
				cfg.Logger = logging.NewLogger(level, &buf)
				cfg.MaxSteps = 4
				d, _ := driver.Open(cfg, newEnv, newCtrl)
				Expect(d.Run(context.Background())).To(Succeed())
				Expect(strings.Count(buf.String(), "msg=step ")).To(Equal(want))
			},
			Entry("trace", "trace", 4),
			Entry("debug", "debug", 0),
		)

		It("uses the injected schedule", func() {
			rec := &resetRecorder{}
			cfg.MaxSteps = 10
			cfg.Observers = []driver.Observer{rec}
			cfg.Schedule = everyOther{}
			d, _ := driver.Open(cfg, newEnv, newCtrl)
			Expect(d.Run(context.Background())).To(Succeed())
			Expect(rec.steps).To(Equal([]int{1, 3, 5, 7, 9}))
		})
	})

	Describe("with the rotary pendulum", func() {
		It("keeps random actions inside the action space", func() {
			var space dynamo.Box
			inside := &spaceChecker{}
			cfg := driver.Config{Frequency: 1000, MaxSteps: 500, Observers: []driver.Observer{inside}}

			d, err := driver.Open(cfg,
				func() (dynamo.Environment, error) {
					e, err := qube.New(qube.Options{Seed: 3})
					if err == nil {
						space = e.ActionSpace()
						inside.space = space
					}
					return e, err
				},
				func(e dynamo.Environment, freq float64) (dynamo.Controller, error) {
					return control.New(control.Random, e, freq, control.Options{Seed: 3})
				})
			Expect(err).NotTo(HaveOccurred())
			defer d.Close()

			Expect(d.Run(context.Background())).To(Succeed())
			Expect(inside.steps).To(Equal(500))
			Expect(inside.outside).To(BeZero())
		})
	})
})

type everyOther struct{}

func (everyOther) Due(step int) bool { return step%2 == 1 }

type spaceChecker struct {
	space   dynamo.Box
	steps   int
	outside int
}

func (s *spaceChecker) OnStep(step int, u dynamo.Control, tr dynamo.Transition) {
	s.steps++
	if !s.space.Contains(u) || tr.Info.Clipped {
		s.outside++
	}
}

func (s *spaceChecker) OnReset(int, int, dynamo.State) {}
