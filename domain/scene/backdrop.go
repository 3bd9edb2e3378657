package scene

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/vova616/screenshot"
)

// ScreenBackdrop grabs the current screen to use as a scene backdrop. The
// backdrop has no depth, so it shows in the color pass only.
func ScreenBackdrop() (image.Image, error) {
	img, err := screenshot.CaptureScreen()
	if err != nil {
		return nil, fmt.Errorf("scene: screen backdrop: %w", err)
	}
	return img, nil
}

// FileBackdrop decodes a PNG or JPEG image from path.
func FileBackdrop(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("scene: backdrop %s: %w", path, err)
	}
	return img, nil
}
