package oklch

import "github.com/lucasb-eyer/go-colorful"

// AdjustLightness shifts the OKLCH lightness of hex by delta, clamped to
// [0,1], keeping chroma and hue. Unparseable input is returned unchanged.
func AdjustLightness(hex string, delta float64) string {
	c, ok := FromHex(hex)
	if !ok {
		return hex
	}

	c.L = clamp(c.L+delta, 0, 1)
	return c.Hex()
}

// Blend interpolates from a (t=0) to b (t=1) in Cartesian OKLab so hues never
// wrap the long way around. If either input is unparseable a is returned
// unchanged.
func Blend(a string, b string, t float64) string {
	if !IsValidHex(a) || !IsValidHex(b) {
		return a
	}

	left, err := colorful.Hex(a)
	if err != nil {
		return a
	}
	right, err := colorful.Hex(b)
	if err != nil {
		return a
	}

	t = clamp(t, 0, 1)
	l1, a1, b1 := left.OkLab()
	l2, a2, b2 := right.OkLab()

	return colorful.OkLab(
		l1+t*(l2-l1),
		a1+t*(a2-a1),
		b1+t*(b2-b1),
	).Clamped().Hex()
}
