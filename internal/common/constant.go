package common

// Locator wire format. Fields are joined with Delimiter; encoded fields
// never contain it.
const (
	Delimiter    = "|"
	SchemeInline = "AETHER"
	SchemeSecure = "SECURE"
	SchemeBeam   = "BEAM"
)

// Beam transport tuning. ChunkSize stays under typical peer-channel
// per-message limits; DrainInterval is the cooperative yield point of the
// sender loop.
const (
	ChunkSize     = 16 * 1024
	DrainInterval = 50
)

// Crypto parameters. These are fixed on both sides of a transfer;
// changing them breaks decryption of existing locators.
const (
	SaltSize      = 16
	NonceSize     = 12
	KeySize       = 32
	KDFIterations = 100_000
)
