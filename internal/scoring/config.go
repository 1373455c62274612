package scoring

// Config carries the tunable constants of the scoring engine. Both values
// are policy set by the fair organizers, not logic, so they are injected
// rather than hard-coded.
type Config struct {
	// VarianceThreshold is the maximum allowed gap between two judges'
	// scores on one section before a coordinator must arbitrate.
	VarianceThreshold float64

	// PointsByRank maps a category rank to competition points. Ranks
	// without an entry earn nothing.
	PointsByRank map[int]float64
}

// DefaultConfig returns the national defaults: a 5-point variance
// threshold and points for the top four ranks.
func DefaultConfig() Config {
	return Config{
		VarianceThreshold: 5,
		PointsByRank: map[int]float64{
			1: 10,
			2: 8,
			3: 6,
			4: 4,
		},
	}
}

// Points returns the competition points for a category rank.
func (c Config) Points(rank int) float64 {
	return c.PointsByRank[rank]
}
