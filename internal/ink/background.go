package ink

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoding for imported photos
	"image/png"
	"strings"
)

// DecodeBackground decodes the surface's data URL background image
func (s Surface) DecodeBackground() (image.Image, error) {
	if !s.HasBackground() {
		return nil, fmt.Errorf("surface %s has no background image", s.ID)
	}
	return DecodeDataURL(s.BackgroundImage)
}

// DecodeDataURL decodes a base64 "data:image/...;base64," URL
func DecodeDataURL(dataURL string) (image.Image, error) {
	header, payload, found := strings.Cut(dataURL, ",")
	if !found || !strings.HasPrefix(header, "data:image/") || !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("not a base64 image data URL")
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 payload: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// EncodeDataURL encodes img as a PNG data URL
func EncodeDataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode PNG: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
