package bot

// Tuning weights the greedy card evaluation. Values are in expected points.
type Tuning struct {
	// Partial sets are worth a share of the set value they move towards.
	TempuraHalfPair   float64
	SashimiOneOfThree float64
	SashimiTwoOfThree float64

	MakiPerSymbol float64
	Pudding       float64

	// Wasabi and chopsticks only pay off with enough turns left.
	WasabiEarly      float64
	WasabiLate       float64
	ChopsticksEarly  float64
	EarlyTurnsLeft   int
	ChopsticksMargin float64 // minimum second-card value to spend chopsticks
}

// DefaultTuning is tuned for plain point grabbing; it ignores opponents.
var DefaultTuning = Tuning{
	TempuraHalfPair:   2.0,
	SashimiOneOfThree: 2.5,
	SashimiTwoOfThree: 4.0,
	MakiPerSymbol:     1.2,
	Pudding:           2.0,
	WasabiEarly:       3.5,
	WasabiLate:        0.2,
	ChopsticksEarly:   2.0,
	EarlyTurnsLeft:    4,
	ChopsticksMargin:  3.0,
}
