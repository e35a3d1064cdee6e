package loader

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"

	"github.com/ironsheep/image-loader-mcp/internal/transform"
)

// Decode reads and decodes the image at path, tagging it with density.
// It returns the raster and the detected format name ("png", "jpeg", "gif").
func Decode(path string, density int) (*transform.Raster, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	r, err := transform.NewRaster(img, density)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return r, format, nil
}
