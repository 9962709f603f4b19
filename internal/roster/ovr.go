package roster

import "math"

// weights per position, in attribute order pace, shooting, passing,
// dribbling, defense, physical. Each row sums to 1.
var weights = map[Position][6]float64{
	Goalkeeper: {0.10, 0.05, 0.15, 0.05, 0.40, 0.25},
	Defender:   {0.15, 0.05, 0.15, 0.10, 0.35, 0.20},
	Midfielder: {0.15, 0.15, 0.30, 0.20, 0.10, 0.10},
	Forward:    {0.20, 0.35, 0.10, 0.20, 0.05, 0.10},
}

// ComputeOVR derives the overall rating from sub-attributes. Unknown positions
// fall back to an unweighted mean.
func ComputeOVR(pos Position, a Attributes) int {
	values := [6]float64{
		float64(a.Pace), float64(a.Shooting), float64(a.Passing),
		float64(a.Dribbling), float64(a.Defense), float64(a.Physical),
	}
	w, ok := weights[pos]
	if !ok {
		w = [6]float64{1.0 / 6, 1.0 / 6, 1.0 / 6, 1.0 / 6, 1.0 / 6, 1.0 / 6}
	}
	var sum float64
	for i, v := range values {
		sum += v * w[i]
	}
	return ClampOVR(int(math.Round(sum)))
}

func ClampOVR(ovr int) int {
	if ovr < 1 {
		return 1
	}
	if ovr > 99 {
		return 99
	}
	return ovr
}
