// SPDX-License-Identifier: EPL-2.0

// Package device is the boundary between the mixing code and whatever pulls
// audio out of it.
//
// A device calls an io.Reader for every period with a buffer it expects
// filled. Mixer, Feeder and Beeper all satisfy that contract. Gate wraps the
// callback so a short read never reaches the device and so Stop is
// synchronous: once it returns, nothing reads sample or block memory and
// teardown can proceed.
//
// Offline is a device without hardware, used for rendering to a file and
// in tests. The real output lives in the speaker subpackage.
package device
