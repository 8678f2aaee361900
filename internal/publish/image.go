package publish

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/png"
	"strings"
)

// decodeImageDataURL turns a captured thumbnail data-URL into raw
// image bytes, verifying they decode as an image before they are
// written world-readable.
func decodeImageDataURL(dataURL string) ([]byte, error) {
	if !strings.HasPrefix(dataURL, "data:") {
		return nil, fmt.Errorf("thumbnail payload is not a data URL")
	}

	idx := strings.IndexByte(dataURL, ',')
	if idx < 0 {
		return nil, fmt.Errorf("thumbnail data URL has no payload")
	}
	meta, payload := dataURL[5:idx], dataURL[idx+1:]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("thumbnail data URL is not base64 encoded")
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode thumbnail payload: %w", err)
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("thumbnail is not a valid image: %w", err)
	}

	return raw, nil
}
