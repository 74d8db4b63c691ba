package metrics

import (
	"math"

	"github.com/san-kum/qubesim/internal/dynamo"
	"github.com/san-kum/qubesim/internal/physics"
)

// UprightThreshold matches the catch region of the balance controller.
var UprightThreshold = 20 * math.Pi / 180

// Standard returns the metrics reported for every episode. maxVoltage is the
// actuator limit used for the saturation figure.
func Standard(model *physics.RotaryPendulum, maxVoltage float64, reward func(dynamo.State) float64) []dynamo.Metric {
	return []dynamo.Metric{
		NewEnergy(model),
		NewMeanVoltage(),
		NewSaturation(maxVoltage),
		NewUpright(UprightThreshold),
		NewReturn(reward),
	}
}
