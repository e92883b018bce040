package tdr

import (
	"context"
	"fmt"
)

// Recognizer is the image-to-text black box of the fallback path.
type Recognizer interface {
	RecognizeImage(ctx context.Context, imagePath string) (string, error)
}

// Tesseract shells out to the tesseract binary, the same external-tool idiom
// used for the poppler utilities.
type Tesseract struct {
	// Language is the traineddata code passed to -l, e.g. "spa".
	Language string
}

func (t Tesseract) RecognizeImage(ctx context.Context, imagePath string) (string, error) {
	args := []string{imagePath, "stdout"}
	if t.Language != "" {
		args = append(args, "-l", t.Language)
	}
	out, err := runCommand(ctx, "tesseract", args...)
	if err != nil {
		return "", fmt.Errorf("tesseract failed for %s: %w", imagePath, err)
	}
	return out, nil
}
