package framegraph

// Dimensions is the drawable surface size in logical units, as reported
// by the windowing layer once per frame tick.
//
// Dimensions are compared by value; the Controller treats any difference
// (including presence vs. absence) as a change. Zero or negative values
// are accepted without validation — graph construction degrades to
// zero-sized images rather than erroring.
type Dimensions struct {
	Width  float64
	Height float64
}
