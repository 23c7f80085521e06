package tween

// Ease maps linear progress in [0, 1] onto eased progress.
//
type Ease func(t float64) float64

func Linear(t float64) float64 {
	return t
}

// Power2In and Power2Out follow the usual game-engine naming, where "power 2" is the cubic curve.
//
func Power2In(t float64) float64 {
	return t * t * t
}

func Power2Out(t float64) float64 {
	inv := 1 - t
	return 1 - inv*inv*inv
}
