package source

// EMUPerPixel is the number of English Metric Units per pixel at 96 DPI.
// 914400 EMU make an inch, which is 96 pixels.
const EMUPerPixel = 9525

// EMUToPixels converts a drawing offset or extent to pixels.
func EMUToPixels(emu int64) int {
	return int(emu / EMUPerPixel)
}
