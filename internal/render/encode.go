package render

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/chai2010/webp"

	coreerrors "github.com/fpang/madphotos-core/internal/core/errors"
)

// EncodeJPEG encodes img at the tier's configured quality.
//
// image/jpeg (stdlib, the only JPEG encoder any example in the pack
// uses) exposes only a Quality option — it has no progressive-scan or
// explicit chroma-subsampling control. §4.4's Progressive and Chroma
// subsampling columns are therefore kept on TierSpec only as declared
// encode intent (store.Tier and the tiers table have no such columns),
// and the encoder always emits baseline JPEG with the library's default 4:2:0
// subsampling. This is called out in DESIGN.md rather than silently
// dropped.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, coreerrors.New(coreerrors.CategoryRender, "encode_jpeg", err)
	}
	return buf.Bytes(), nil
}

// EncodeWebP encodes img at the tier's configured WebP quality via
// chai2010/webp, the pack's only WebP binding (francis-pang's
// thumbnail generator).
func EncodeWebP(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, coreerrors.New(coreerrors.CategoryRender, "encode_webp", err)
	}
	return buf.Bytes(), nil
}

// Encode dispatches by format name ("jpeg" | "webp"), used by the tier
// render loop which iterates TierSpec.Formats().
func Encode(img image.Image, format string, jpegQ, webpQ int) ([]byte, error) {
	switch format {
	case "jpeg":
		return EncodeJPEG(img, jpegQ)
	case "webp":
		return EncodeWebP(img, webpQ)
	default:
		return nil, coreerrors.New(coreerrors.CategoryRender, "encode", fmt.Errorf("%w: %s", coreerrors.ErrUnsupportedFormat, format))
	}
}
