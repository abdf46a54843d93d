package texture

// cocgOffset is the 128/255 bias applied to the Co and Cg channels.
const cocgOffset = 128.0 / 255.0

// scaledYCoCgToRGB converts one texel of a scaled YCoCg DXT5 image to RGB.
// The block stores Co in R, Cg in G, the per-block scale in B and luma in A.
func scaledYCoCgToRGB(r, g, b, a uint8) (float32, float32, float32) {
	co := float32(r)/255 - cocgOffset
	cg := float32(g)/255 - cocgOffset
	scale := float32(b)/255*(255.0/8.0) + 1
	co /= scale
	cg /= scale
	y := float32(a) / 255

	return clamp01(y + co - cg), clamp01(y + cg), clamp01(y - co - cg)
}

// rgbToScaledYCoCg converts an RGB texel (0-255) to the stored scaled YCoCg
// channels with a scale of 1.
func rgbToScaledYCoCg(r, g, b uint8) (co, cg, scale, y uint8) {
	rf := float32(r) / 255
	gf := float32(g) / 255
	bf := float32(b) / 255

	yf := rf/4 + gf/2 + bf/4
	cof := rf/2 - bf/2
	cgf := -rf/4 + gf/2 - bf/4

	return to8(cof + cocgOffset), to8(cgf + cocgOffset), 0, to8(yf)
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func to8(v float32) uint8 {
	return uint8(clamp01(v)*255 + 0.5)
}
