package astro

// Polynomial holds the coefficients c0..c3 of c0 + c1*t + c2*t² + c3*t³.
type Polynomial [4]float64

// Eval evaluates the polynomial at t.
func (p Polynomial) Eval(t float64) float64 {
	return p[0] + t*(p[1]+t*(p[2]+t*p[3]))
}

// Angle evaluates the polynomial and normalizes the result to [0, 360).
func (p Polynomial) Angle(t float64) float64 {
	return normalizeAngle360(p.Eval(t))
}

// Arguments are the fundamental angles, in degrees, that periodic terms
// combine: mean elongation D, solar mean anomaly M, lunar mean anomaly M'
// and argument of latitude F.
type Arguments struct {
	D, M, Mp, F float64
}

// Term is one periodic term: Coeff * sin or cos of the integer combination
// D*args.D + M*args.M + Mp*args.Mp + F*args.F.
type Term struct {
	Coeff       float64
	D, M, Mp, F int
}

// Argument returns the term's angle in degrees.
func (t Term) Argument(a Arguments) float64 {
	return float64(t.D)*a.D + float64(t.M)*a.M + float64(t.Mp)*a.Mp + float64(t.F)*a.F
}

func evalSin(terms []Term, a Arguments) float64 {
	var sum float64
	for _, t := range terms {
		sum += t.Coeff * dsin(t.Argument(a))
	}
	return sum
}

func evalCos(terms []Term, a Arguments) float64 {
	var sum float64
	for _, t := range terms {
		sum += t.Coeff * dcos(t.Argument(a))
	}
	return sum
}
