package label

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Thermal label canvas: 4x6in at 203dpi.
const (
	labelWidth  = 812
	labelHeight = 1218
)

// NormalizeImage turns raster labels portrait and fits them on the thermal canvas, re-encoded
// as PNG. Other documents (PDF, ZPL) are returned unchanged.
func NormalizeImage(doc Document) (Document, error) {
	format, ok := rasterFormat(doc.MimeType)
	if !ok {
		return doc, nil
	}

	img, err := imaging.Decode(bytes.NewReader(doc.Data), imaging.AutoOrientation(true))
	if err != nil {
		return Document{}, fmt.Errorf("decode %s label %q: %w", format, doc.Name, err)
	}
	img = portrait(img)
	if b := img.Bounds(); b.Dx() > labelWidth || b.Dy() > labelHeight {
		img = imaging.Fit(img, labelWidth, labelHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return Document{}, fmt.Errorf("encode label %q: %w", doc.Name, err)
	}
	doc.Data = buf.Bytes()
	doc.MimeType = "image/png"
	return doc, nil
}

func portrait(img image.Image) image.Image {
	if b := img.Bounds(); b.Dx() > b.Dy() {
		return imaging.Rotate90(img)
	}
	return img
}

func rasterFormat(mime string) (imaging.Format, bool) {
	switch mime {
	case "image/png":
		return imaging.PNG, true
	case "image/jpeg":
		return imaging.JPEG, true
	case "image/gif":
		return imaging.GIF, true
	default:
		return 0, false
	}
}
