package cmd

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/image/draw"
)

// Social card dimensions expected by Open Graph and Twitter's
// summary_large_image card.
const (
	cardWidth  = 1200
	cardHeight = 630
)

var imageCardCmd = &cobra.Command{
	Use:   "card <input>",
	Short: "Render a social sharing card from an image",
	Long: `Render a 1200x630 social sharing card from a source image, the size
Open Graph and Twitter large-summary cards expect. The source is scaled
to cover the card and center-cropped.`,
	Args: cobra.ExactArgs(1),
	RunE: runImageCard,
}

func init() {
	imageCmd.AddCommand(imageCardCmd)

	imageCardCmd.Flags().StringP("out", "o", "", "Output path (defaults to <input>.card.jpg)")
	imageCardCmd.Flags().String("format", "jpeg", "Card format: jpeg or png")
	imageCardCmd.Flags().Int("jpeg-quality", 85, "JPEG quality (1-100)")
}

func runImageCard(cmd *cobra.Command, args []string) error {
	inPath := strings.TrimSpace(args[0])
	outPath, _ := cmd.Flags().GetString("out")
	format, _ := cmd.Flags().GetString("format")
	jpegQuality, _ := cmd.Flags().GetInt("jpeg-quality")

	format = strings.ToLower(strings.TrimSpace(format))
	if format != "jpeg" && format != "jpg" && format != "png" {
		return fmt.Errorf("unsupported format: %s", format)
	}

	if outPath == "" {
		base := strings.TrimSuffix(inPath, filepath.Ext(inPath))
		ext := "jpg"
		if format == "png" {
			ext = "png"
		}
		outPath = fmt.Sprintf("%s.card.%s", base, ext)
	}

	inFile, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer inFile.Close() // nolint:errcheck

	src, _, err := image.Decode(inFile)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", inPath, err)
	}

	card, err := renderCard(src)
	if err != nil {
		return err
	}

	outFile, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer outFile.Close() // nolint:errcheck

	if err := encodeCard(outFile, card, format, jpegQuality); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%dx%d)\n", outPath, cardWidth, cardHeight)
	return nil
}

// renderCard scales src to cover the card and center-crops the overflow.
func renderCard(src image.Image) (image.Image, error) {
	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, errors.New("invalid image dimensions")
	}

	scaleX := float64(cardWidth) / float64(width)
	scaleY := float64(cardHeight) / float64(height)
	scale := scaleX
	if scaleY > scale {
		scale = scaleY
	}

	scaledW := int(float64(width)*scale + 0.5)
	scaledH := int(float64(height)*scale + 0.5)

	scaled := image.NewRGBA(image.Rect(0, 0, scaledW, scaledH))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), src, bounds, draw.Over, nil)

	offsetX := (scaledW - cardWidth) / 2
	offsetY := (scaledH - cardHeight) / 2

	card := image.NewRGBA(image.Rect(0, 0, cardWidth, cardHeight))
	draw.Draw(card, card.Bounds(), scaled, image.Pt(offsetX, offsetY), draw.Src)
	return card, nil
}

func encodeCard(w io.Writer, img image.Image, format string, jpegQuality int) error {
	if format == "png" {
		return png.Encode(w, img)
	}

	q := jpegQuality
	if q < 1 {
		q = 1
	}
	if q > 100 {
		q = 100
	}
	return jpeg.Encode(w, img, &jpeg.Options{Quality: q})
}
