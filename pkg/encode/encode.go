// Package encode turns fetched image bytes into a transportable form: the
// validated bytes, their MIME type and a data: URL.
package encode

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	// Registered decoders for the formats image hosts serve.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/Rokon-556/recipe-gen/pkg/errutils"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Encoded is an image ready to be saved directly or embedded.
type Encoded struct {
	MIMEType string
	Width    int
	Height   int
	Data     []byte
}

// Encode validates data as a JPEG, PNG, GIF, BMP or WebP image. Empty or
// undecodable buffers fail with *errutils.EncodeError.
func Encode(data []byte) (Encoded, error) {
	if len(data) == 0 {
		return Encoded{}, &errutils.EncodeError{Cause: errors.New("empty image buffer")}
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Encoded{}, &errutils.EncodeError{Cause: err}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Encoded{}, &errutils.EncodeError{Cause: errors.New("image has no pixels")}
	}
	return Encoded{
		MIMEType: "image/" + format,
		Width:    cfg.Width,
		Height:   cfg.Height,
		Data:     data,
	}, nil
}

// DataURL renders the image as a base64 data: URL.
func (e Encoded) DataURL() string {
	var sb strings.Builder
	sb.Grow(len("data:;base64,") + len(e.MIMEType) + base64.StdEncoding.EncodedLen(len(e.Data)))
	sb.WriteString("data:")
	sb.WriteString(e.MIMEType)
	sb.WriteString(";base64,")
	sb.WriteString(base64.StdEncoding.EncodeToString(e.Data))
	return sb.String()
}
