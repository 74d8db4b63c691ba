package driver_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/qubesim/internal/driver"
)

var _ = Describe("StepSchedule", func() {
	DescribeTable("fires on multiples of three seconds of steps",
		func(freq float64, step int, want bool) {
			Expect(driver.StepSchedule{Frequency: freq}.Due(step)).To(Equal(want))
		},
		Entry("first step", 1000.0, 0, true),
		Entry("mid episode", 1000.0, 1500, false),
		Entry("one before", 1000.0, 2999, false),
		Entry("boundary", 1000.0, 3000, true),
		Entry("second boundary", 1000.0, 6000, true),
		Entry("low rate", 10.0, 30, true),
		Entry("fractional period", 0.5, 1, false),
		Entry("fractional period multiple", 0.5, 3, true),
		Entry("non-integer period never fires after zero", 0.1, 3, false),
	)
})

var _ = Describe("ClockSchedule", func() {
	It("fires once per interval of the injected clock", func() {
		now := time.Unix(0, 0)
		s := driver.NewClockSchedule(3*time.Second, func() time.Time { return now })

		Expect(s.Due(0)).To(BeFalse())
		now = now.Add(2 * time.Second)
		Expect(s.Due(1)).To(BeFalse())
		now = now.Add(time.Second)
		Expect(s.Due(2)).To(BeTrue())
		Expect(s.Due(3)).To(BeFalse())
		now = now.Add(3 * time.Second)
		Expect(s.Due(4)).To(BeTrue())
	})
})

var _ = Describe("RatePacer", func() {
	It("reports its rate", func() {
		Expect(driver.NewRatePacer(250).Rate()).To(Equal(250.0))
	})
})
