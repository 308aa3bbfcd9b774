package pdf

import (
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// TesseractOCR runs Tesseract through gosseract. A client is created per
// call since gosseract clients are not safe for concurrent use.
type TesseractOCR struct {
	Languages []string
}

func (t TesseractOCR) Text(imagePath string) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if len(t.Languages) > 0 {
		if err := client.SetLanguage(t.Languages...); err != nil {
			return "", err
		}
	}
	if err := client.SetImage(imagePath); err != nil {
		return "", err
	}
	text, err := client.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
