// Package muderr defines the sentinel error kinds shared across the core.
//
// The sentinels cover disconnects, encode failures, duplicate and missing
// model names, authentication failures, malformed packets, and action-queue
// drain overflow; script runtime failures have no sentinel here. Callers use
// errors.Is against these sentinels rather than matching on type.
package muderr

import "errors"

var (
	// ErrDisconnected marks a world or client socket that returned EOF.
	ErrDisconnected = errors.New("mudcore: connection closed")

	// ErrEncode marks a codec encode failure (character unrepresentable in
	// the active codec).
	ErrEncode = errors.New("mudcore: encode error")

	// ErrDuplicateName marks an add() call to a model store whose name
	// already exists.
	ErrDuplicateName = errors.New("mudcore: duplicate name")

	// ErrNotFound marks a lookup by name that found nothing.
	ErrNotFound = errors.New("mudcore: not found")

	// ErrAuth marks an authentication handshake failure.
	ErrAuth = errors.New("mudcore: authentication failed")

	// ErrMalformedPacket marks a framed packet that failed to decode.
	ErrMalformedPacket = errors.New("mudcore: malformed packet")

	// ErrDrainOverflow marks an action-queue drain that exceeded its
	// iteration cap.
	ErrDrainOverflow = errors.New("mudcore: action queue drain exceeded limit")
)
