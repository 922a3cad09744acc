// SPDX-License-Identifier: EPL-2.0

package queue

import "errors"

var (
	// ErrEmpty is returned by a non-blocking Pop when no block is ready.
	ErrEmpty = errors.New("queue is empty")

	// ErrClosed is returned by every Push and Pop once the queue is closed.
	ErrClosed = errors.New("queue is closed")

	// ErrFull is returned by TryPush on a bounded queue at capacity.
	ErrFull = errors.New("queue is full")
)
