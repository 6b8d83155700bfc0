// Growth curve math for view counter targets
package curve

import (
	"errors"
	"fmt"
	"math"
)

// Shape selects the growth curve family for a simulation.
type Shape string

// Supported curve shapes.
const (
	Sigmoid     Shape = "sigmoid"
	Exponential Shape = "exponential"
	Logarithmic Shape = "logarithmic"
	Linear      Shape = "linear"
)

// steepness controls how sharp the sigmoid ramp-up is.
const steepness = 0.15

// ErrNonPositiveInitial is returned when an exponential curve is requested
// with an initial value of zero or below (the growth rate ln(L/initial)/T
// is undefined there).
var ErrNonPositiveInitial = errors.New("exponential curve requires initial value > 0")

// Valid reports whether s is one of the supported shapes.
func (s Shape) Valid() bool {
	switch s {
	case Sigmoid, Exponential, Logarithmic, Linear:
		return true
	}
	return false
}

// SigmoidValue returns the cumulative delta reached after t of total hours
// for a maximum delta of max. The value at t=0 is near zero but not exactly
// zero; this is an approximation inherent to the logistic function, not an
// exact boundary condition.
func SigmoidValue(t, total, max float64) float64 {
	return max / (1 + math.Exp(-steepness*(t-total/2)))
}

// ExponentialValue grows from initial at t=0 towards max at t=total.
func ExponentialValue(t, total, initial, max float64) (float64, error) {
	if initial <= 0 {
		return 0, ErrNonPositiveInitial
	}
	rate := math.Log(max/initial) / total
	return math.Min(initial*math.Exp(rate*t), max), nil
}

// LogarithmicValue returns a fast-start cumulative delta capped at max.
func LogarithmicValue(t, total, max float64) float64 {
	return math.Min(max*math.Log(t+1)/math.Log(total+1), max)
}

// LinearValue interpolates from initial to max over total hours.
func LinearValue(t, total, initial, max float64) float64 {
	return initial + (max-initial)*t/total
}

// Target returns the absolute counter value a simulation should have reached
// after t of total hours, given its initial value and cap. The result never
// exceeds max.
func Target(shape Shape, t, total float64, initial, max int64) (float64, error) {
	i := float64(initial)
	m := float64(max)
	var v float64
	switch shape {
	case Sigmoid:
		v = i + SigmoidValue(t, total, m-i)
	case Exponential:
		ev, err := ExponentialValue(t, total, i, m)
		if err != nil {
			return 0, err
		}
		v = ev
	case Logarithmic:
		v = i + LogarithmicValue(t, total, m-i)
	case Linear:
		v = LinearValue(t, total, i, m)
	default:
		return 0, fmt.Errorf("unknown curve shape %q", shape)
	}
	return math.Min(v, m), nil
}
