package arena

import (
	"image"
	"image/draw"
	"image/png"
	"io"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

const (
	pvLineHeight = 18
	pvFontSize   = 14
	pvMarginX    = 8
	pvMarginY    = 8
)

// RenderPV rasterizes one line of text per principal-variation move to a
// PNG written to w — a diagnostic artifact for when the "info depth" text
// stream isn't convenient (e.g. sharing a position in a bug report).
// Grounded on the teacher's (unwired) golang/freetype + golang.org/x/image
// dependencies; no direct teacher function, new in the idiom of the
// teacher's other small single-purpose cmd/ helpers.
func RenderPV(w io.Writer, moves []string) error {
	width := 640
	height := pvMarginY*2 + pvLineHeight*(len(moves)+1)
	if height < pvMarginY*2+pvLineHeight {
		height = pvMarginY*2 + pvLineHeight
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	fnt, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return err
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(fnt)
	ctx.SetFontSize(pvFontSize)
	ctx.SetClip(img.Bounds())
	ctx.SetDst(img)
	ctx.SetSrc(image.Black)

	pt := fixed.Point26_6{X: fixed.I(pvMarginX), Y: fixed.I(pvMarginY + pvLineHeight)}
	if _, err := ctx.DrawString("principal variation", pt); err != nil {
		return err
	}

	for _, mov := range moves {
		pt.Y += fixed.I(pvLineHeight)
		if _, err := ctx.DrawString(mov, pt); err != nil {
			return err
		}
	}

	return png.Encode(w, img)
}
