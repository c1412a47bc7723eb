// Package header implements the compact text form of file metadata that is
// embedded in inline locators: JSON serialized through base64 so the result
// survives any text channel byte-for-byte, including multi-byte filenames.
package header

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/aethershare/aether/internal/common"
)

// Geo restricts a locator to receivers inside a circle around a point.
// Radius is in meters.
type Geo struct {
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Radius float64 `json:"radius"`
}

// FileHeader carries the metadata of a shared file. Salt and IV are present
// exactly when Encrypted is true.
type FileHeader struct {
	Name      string `json:"name"`
	Mime      string `json:"mime,omitempty"`
	Encrypted bool   `json:"encrypted,omitempty"`
	Vibe      string `json:"vibe,omitempty"`
	Expiry    int64  `json:"expires,omitempty"` // unix milliseconds, 0 = never
	Geo       *Geo   `json:"geo,omitempty"`
	Salt      []byte `json:"salt,omitempty"`
	IV        []byte `json:"iv,omitempty"`
}

// Encode serializes h to its locator text form. The result contains only
// base64 characters, so it never collides with the locator field delimiter.
func Encode(h *FileHeader) (string, error) {
	if err := validate(h); err != nil {
		return "", err
	}
	data, err := json.Marshal(h)
	if err != nil {
		return "", fmt.Errorf("marshaling header: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Decode parses the locator text form back into a FileHeader. Any defect
// (bad alphabet, bad JSON, missing filename, inconsistent crypto fields)
// surfaces as common.ErrMalformedHeader.
func Decode(s string) (*FileHeader, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedHeader, err)
	}

	h := &FileHeader{}
	if err := json.Unmarshal(data, h); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedHeader, err)
	}

	if err := validate(h); err != nil {
		return nil, err
	}

	return h, nil
}

func validate(h *FileHeader) error {
	if h.Name == "" {
		return fmt.Errorf("%w: empty filename", common.ErrMalformedHeader)
	}
	hasCrypto := len(h.Salt) == common.SaltSize && len(h.IV) == common.NonceSize
	if h.Encrypted != hasCrypto {
		return fmt.Errorf("%w: inconsistent crypto parameters", common.ErrMalformedHeader)
	}
	return nil
}
