package view

import (
	"image"

	"github.com/soocke/photo3d-go/ui/images"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// CapturePreview shows the live viewport and thumbnails of the last color and
// depth files.
type CapturePreview interface {
	UpdateViewport(img image.Image)
	UpdatePair(color, depth image.Image)
}

const (
	// ViewportW and ViewportH size the live reference camera view.
	ViewportW = 480
	ViewportH = 270
	// ThumbW and ThumbH bound the color/depth thumbnails.
	ThumbW = 236
	ThumbH = 133
)

type capturePreview struct {
	viewportLabel *LabelWidget
	colorLabel    *LabelWidget
	depthLabel    *LabelWidget
	// previous Tk photos, deleted before replacement so off-screen image
	// data does not accumulate
	prevViewport *Img
	prevColor    *Img
	prevDepth    *Img
}

// NewCapturePreview creates the preview labels, grids them and returns the view.
// Layout: the viewport spans columns 0-1 of row; thumbnails sit below it.
func NewCapturePreview(row int) CapturePreview {
	v := &capturePreview{}
	v.prevViewport = NewPhoto(Data(images.EncodePNG(images.Placeholder(ViewportW, ViewportH))))
	v.prevColor = NewPhoto(Data(images.EncodePNG(images.Placeholder(ThumbW, ThumbH))))
	v.prevDepth = NewPhoto(Data(images.EncodePNG(images.Placeholder(ThumbW, ThumbH))))
	v.viewportLabel = Label(Image(v.prevViewport), Borderwidth(1), Relief("sunken"))
	v.colorLabel = Label(Image(v.prevColor), Borderwidth(1), Relief("sunken"))
	v.depthLabel = Label(Image(v.prevDepth), Borderwidth(1), Relief("sunken"))
	Grid(v.viewportLabel, Row(row), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.4m"))
	Grid(v.colorLabel, Row(row+1), Column(0), Sticky("we"), Padx("0.4m"), Pady("0.4m"))
	Grid(v.depthLabel, Row(row+1), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.4m"))
	return v
}

func replacePhoto(lbl *LabelWidget, prev **Img, img image.Image) {
	if lbl == nil || img == nil {
		return
	}
	pngBytes := images.EncodePNG(img)
	if *prev != nil {
		(*prev).Delete()
	}
	*prev = NewPhoto(Data(pngBytes))
	lbl.Configure(Image(*prev))
}

func (v *capturePreview) UpdateViewport(img image.Image) {
	replacePhoto(v.viewportLabel, &v.prevViewport, images.ScaleToFit(img, ViewportW, ViewportH))
}

// UpdatePair expects thumbnails already scaled by the preview presenter.
func (v *capturePreview) UpdatePair(color, depth image.Image) {
	replacePhoto(v.colorLabel, &v.prevColor, color)
	replacePhoto(v.depthLabel, &v.prevDepth, depth)
}
