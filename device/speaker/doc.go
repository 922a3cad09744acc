// SPDX-License-Identifier: EPL-2.0

// Package speaker is the system audio output, built on github.com/ebitengine/oto/v3.
//
// Building with -tags headless swaps the output for a device.Offline that
// keeps real-time pacing but writes nowhere, for machines without sound.
package speaker
