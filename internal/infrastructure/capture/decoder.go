// Package capture turns an image acquired by the client (camera frame or
// file upload) into a catalog image payload.
package capture

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/zantech/instantorder/internal/domain/catalog"
	"github.com/zantech/instantorder/internal/domain/shared"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"
)

// DefaultMaxBytes bounds the decoded payload size
const DefaultMaxBytes = 8 << 20

var supportedFormats = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
}

var errEmptyPayload = errors.New("empty payload")

// Image is a verified raster image
type Image struct {
	MIME   string `json:"mime"`
	Data   string `json:"data"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// CatalogImage returns the payload attached to products
func (i Image) CatalogImage() *catalog.Image {
	return &catalog.Image{MIME: i.MIME, Data: i.Data}
}

// Decoder verifies captured image payloads
type Decoder struct {
	maxBytes int
	logger   *zap.Logger
}

// NewDecoder creates a decoder. maxBytes <= 0 uses DefaultMaxBytes.
func NewDecoder(maxBytes int, logger *zap.Logger) *Decoder {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Decoder{maxBytes: maxBytes, logger: logger}
}

// Decode accepts either a data URL or a bare base64 payload. The MIME type of
// the result is taken from the decoded content, not from the caller.
func (d *Decoder) Decode(ctx context.Context, payload string) (Image, error) {
	if err := ctx.Err(); err != nil {
		return Image{}, shared.NewDeviceAccessFailure("image capture cancelled", err)
	}

	raw, declared, err := d.bytes(payload)
	if err != nil {
		return Image{}, shared.NewDeviceAccessFailure("unreadable image payload", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return Image{}, shared.NewDeviceAccessFailure("payload is not a supported image", err)
	}
	mime, ok := supportedFormats[format]
	if !ok {
		return Image{}, shared.NewDeviceAccessFailure("unsupported image format",
			fmt.Errorf("format %q", format))
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Image{}, shared.NewDeviceAccessFailure("image has no pixels", nil)
	}
	if declared != "" && declared != mime {
		d.logger.Debug("captured image MIME differs from content",
			zap.String("declared", declared),
			zap.String("detected", mime),
		)
	}

	return Image{
		MIME:   mime,
		Data:   base64.StdEncoding.EncodeToString(raw),
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}

// bytes returns the decoded payload and the MIME type a data URL declared
func (d *Decoder) bytes(payload string) ([]byte, string, error) {
	payload = strings.TrimSpace(payload)
	declared := ""
	if rest, ok := strings.CutPrefix(payload, "data:"); ok {
		meta, data, found := strings.Cut(rest, ",")
		if !found {
			return nil, "", errors.New("malformed data URL")
		}
		mime, encoding, _ := strings.Cut(meta, ";")
		if encoding != "base64" {
			return nil, "", fmt.Errorf("unsupported data URL encoding %q", encoding)
		}
		declared = strings.ToLower(mime)
		payload = data
	}
	if payload == "" {
		return nil, "", errEmptyPayload
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > d.maxBytes {
		return nil, "", fmt.Errorf("payload exceeds %d bytes", d.maxBytes)
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
	}
	if err != nil {
		return nil, "", fmt.Errorf("invalid base64: %w", err)
	}
	return raw, declared, nil
}
