package hydrosphere

// gradient writes the first derivative of f with respect to a uniform
// spacing dx into dst and returns it. Interior points use central
// differences, the two ends use one-sided differences. A single sample has
// no neighbours and gets a zero derivative.
func gradient(dst, f []float64, dx float64) []float64 {
	n := len(f)
	if cap(dst) < n {
		dst = make([]float64, n)
	}
	dst = dst[:n]

	switch n {
	case 0:
		return dst
	case 1:
		dst[0] = 0
		return dst
	}

	dst[0] = (f[1] - f[0]) / dx
	for i := 1; i < n-1; i++ {
		dst[i] = (f[i+1] - f[i-1]) / (2 * dx)
	}
	dst[n-1] = (f[n-1] - f[n-2]) / dx
	return dst
}
