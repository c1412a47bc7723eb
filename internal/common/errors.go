// Package common defines shared constants and sentinel errors used across
// the Aether pipeline stages and the CLI/relay layers. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Decode-path errors.
	ErrMalformedHeader    = errors.New("malformed header")
	ErrCorruptStream      = errors.New("corrupt compressed stream")
	ErrUnsupportedLocator = errors.New("unsupported locator")

	// Crypto errors. Wrong password and tampered ciphertext both surface
	// as ErrAuthentication; the distinction must not leak.
	ErrAuthentication = errors.New("authentication failed")

	// Beam-path errors.
	ErrTransferAborted = errors.New("transfer aborted")

	// Policy errors.
	ErrExpired    = errors.New("locator expired")
	ErrOutOfRange = errors.New("receiver outside allowed area")
)
