package domain

import (
	"fmt"
	"math"
)

// Volume bounds and step, expressed as playback gain multipliers.
const (
	VolumeMin     Volume = 0.1
	VolumeMax     Volume = 2.0
	VolumeDefault Volume = 1.0
)

// Volume is a playback gain multiplier clamped to [VolumeMin, VolumeMax].
// Adjustments happen in 0.1 steps; arithmetic is done on whole decisteps
// so repeated adjustments never accumulate float drift.
type Volume float64

// Adjust moves the volume by the given number of 0.1 steps and clamps
// the result.
func (v Volume) Adjust(steps int) Volume {
	deci := int(math.Round(float64(v)*10)) + steps
	if deci < 1 {
		deci = 1
	}
	if deci > 20 {
		deci = 20
	}
	return Volume(float64(deci) / 10)
}

// Up raises the volume by one step.
func (v Volume) Up() Volume { return v.Adjust(1) }

// Down lowers the volume by one step.
func (v Volume) Down() Volume { return v.Adjust(-1) }

// Clamp forces an arbitrary value into the valid volume range.
func Clamp(v float64) Volume {
	return Volume(v).Adjust(0)
}

func (v Volume) Float64() float64 { return float64(v) }

// String renders the volume the way the panel displays it, e.g. "1.5x".
func (v Volume) String() string {
	return fmt.Sprintf("%.1fx", float64(v))
}
