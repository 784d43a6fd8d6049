package mri

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// EnhanceContrast applies CLAHE to a rendered grayscale slice. MRI slices
// concentrate most intensity in a narrow band; adaptive equalization makes
// cortical detail visible without blowing out the skull.
func EnhanceContrast(img *image.Gray, clipLimit float64) (*image.Gray, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return img, nil
	}
	if clipLimit <= 0 {
		clipLimit = 2.0
	}

	// Repack row by row; the image stride may exceed the width.
	packed := make([]byte, w*h)
	for y := 0; y < h; y++ {
		copy(packed[y*w:(y+1)*w], img.Pix[y*img.Stride:y*img.Stride+w])
	}

	src, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8U, packed)
	if err != nil {
		return nil, fmt.Errorf("wrapping slice pixels: %w", err)
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()

	clahe := gocv.NewCLAHEWithParams(clipLimit, image.Pt(8, 8))
	defer clahe.Close()
	clahe.Apply(src, &dst)

	out := image.NewGray(image.Rect(0, 0, w, h))
	data := dst.ToBytes()
	for y := 0; y < h; y++ {
		copy(out.Pix[y*out.Stride:y*out.Stride+w], data[y*w:(y+1)*w])
	}
	return out, nil
}
