// SPDX-License-Identifier: EPL-2.0

package audio

// catmullRom interpolates between y1 and y2 at t in [0, 1], using the
// neighbours y0 and y3 to shape the curve.
func catmullRom(y0, y1, y2, y3, t float32) float32 {
	a := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	b := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	c := -0.5*y0 + 0.5*y2
	return ((a*t+b)*t+c)*t + y1
}
