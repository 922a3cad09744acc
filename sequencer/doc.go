// SPDX-License-Identifier: EPL-2.0

// Package sequencer drives a voice mixer from step patterns.
//
// Each Track loops a Pattern such as "#...*..#" on one voice: '#' triggers
// the track's sound at its accent gain, '*' at its soft gain and '.' rests.
// Run steps on a time.Ticker from an ordinary goroutine; hits reach the
// device on the next callback after Trigger returns.
package sequencer
