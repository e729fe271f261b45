// Package scanner turns camera frames into product codes.
package scanner

import (
	"errors"
	"image"
	"strings"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"
)

var ErrNoCode = errors.New("no se detectó ningún código")

// Decoder finds one code in an image.
type Decoder interface {
	Decode(img image.Image) (string, error)
}

// ZXing decodes QR, EAN-13, EAN-8, UPC-A, Code-128 and Code-39. gozxing
// readers keep per-decode state, so each Decode builds its own set and one
// ZXing may serve concurrent requests.
type ZXing struct {
	hints map[gozxing.DecodeHintType]interface{}
}

func NewDecoder() *ZXing {
	return &ZXing{
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
	}
}

func newReaders() []gozxing.Reader {
	return []gozxing.Reader{
		qrcode.NewQRCodeReader(),
		oned.NewEAN13Reader(),
		oned.NewEAN8Reader(),
		oned.NewUPCAReader(),
		oned.NewCode128Reader(),
		oned.NewCode39Reader(),
	}
}

// Decode returns the text of the first reader that recognizes the image.
func (z *ZXing) Decode(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", err
	}
	for _, r := range newReaders() {
		res, err := r.Decode(bmp, z.hints)
		if err != nil {
			continue
		}
		if text := strings.TrimSpace(res.GetText()); text != "" {
			return text, nil
		}
	}
	return "", ErrNoCode
}
