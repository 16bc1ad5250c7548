// Package attachments decides how file payloads are kept in local storage:
// inline as data URLs when they fit the budget, resized once when they are
// oversized images, and replaced by file references otherwise.
package attachments

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"log/slog"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"hrmsync/internal/domain/records"
)

const (
	DefaultMaxSizeBytes int64 = 500 * 1024
	DefaultMaxWidth           = 800
	DefaultMaxHeight          = 800
	DefaultQuality            = 0.7
)

// File is an uploaded attachment.
type File struct {
	Name string
	Type string
	Data []byte
}

func (f *File) Size() int64 { return int64(len(f.Data)) }

func (f *File) IsImage() bool {
	return strings.HasPrefix(strings.ToLower(f.Type), "image/")
}

type Options struct {
	MaxWidth     int
	MaxHeight    int
	Quality      float64 // 0..1, JPEG output only
	MaxSizeBytes int64
}

func (o Options) withDefaults() Options {
	if o.MaxWidth <= 0 {
		o.MaxWidth = DefaultMaxWidth
	}
	if o.MaxHeight <= 0 {
		o.MaxHeight = DefaultMaxHeight
	}
	if o.Quality <= 0 || o.Quality > 1 {
		o.Quality = DefaultQuality
	}
	if o.MaxSizeBytes <= 0 {
		o.MaxSizeBytes = DefaultMaxSizeBytes
	}
	return o
}

// ProcessFileForStorage turns file into the value stored in an attachment
// field. It never returns an inline data URL longer than MaxSizeBytes; images
// get exactly one resize attempt before falling back to a reference tagged
// tooLarge. It performs no storage writes.
func ProcessFileForStorage(ctx context.Context, file *File, opts Options) (records.FileField, error) {
	if file == nil {
		return records.FileField{}, nil
	}
	opts = opts.withDefaults()

	if !file.IsImage() {
		ref := referenceFor(file)
		ref.TooLarge = file.Size() > opts.MaxSizeBytes
		return records.ReferenceFile(ref), nil
	}

	if file.Size() <= opts.MaxSizeBytes {
		dataURL := buildDataURL(file.Type, file.Data)
		if int64(len(dataURL)) <= opts.MaxSizeBytes {
			return records.InlineFile(dataURL), nil
		}
	}

	if err := ctx.Err(); err != nil {
		return records.FileField{}, err
	}

	dataURL, err := resizeImage(file, opts)
	if err != nil {
		slog.Warn("attachment image decode failed", "name", file.Name, "type", file.Type, "err", err)
		ref := referenceFor(file)
		ref.TooLarge = true
		return records.ReferenceFile(ref), nil
	}
	if int64(len(dataURL)) > opts.MaxSizeBytes {
		ref := referenceFor(file)
		ref.TooLarge = true
		ref.ResizedSize = int64(len(dataURL))
		return records.ReferenceFile(ref), nil
	}
	return records.InlineFile(dataURL), nil
}

func referenceFor(file *File) records.FileReference {
	return records.FileReference{
		Type:     records.FileReferenceType,
		Name:     file.Name,
		Size:     file.Size(),
		FileType: file.Type,
	}
}

func buildDataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func resizeImage(file *File, opts Options) (string, error) {
	src, _, err := image.Decode(bytes.NewReader(file.Data))
	if err != nil {
		return "", err
	}

	bounds := src.Bounds()
	width, height := FitDimensions(bounds.Dx(), bounds.Dy(), opts.MaxWidth, opts.MaxHeight)
	dst := image.NewRGBA(image.Rect(0, 0, width, height))

	mime := outputMIME(file.Type)
	if mime == "image/jpeg" {
		// jpeg has no alpha channel
		draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if mime == "image/png" {
		err = png.Encode(&buf, dst)
	} else {
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality(opts.Quality)})
	}
	if err != nil {
		return "", err
	}
	return buildDataURL(mime, buf.Bytes()), nil
}

// png and gif keep a lossless format; everything else is re-encoded as jpeg.
func outputMIME(sourceType string) string {
	switch strings.ToLower(sourceType) {
	case "image/png", "image/gif":
		return "image/png"
	default:
		return "image/jpeg"
	}
}

func jpegQuality(q float64) int {
	v := int(q*100 + 0.5)
	if v < 1 {
		return 1
	}
	if v > 100 {
		return 100
	}
	return v
}

// FitDimensions scales width x height down to fit maxWidth x maxHeight,
// keeping the aspect ratio. It never scales up.
func FitDimensions(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= 0 || height <= 0 {
		return 1, 1
	}
	if width <= maxWidth && height <= maxHeight {
		return width, height
	}
	ratio := min(float64(maxWidth)/float64(width), float64(maxHeight)/float64(height))
	w := max(int(float64(width)*ratio+0.5), 1)
	h := max(int(float64(height)*ratio+0.5), 1)
	return w, h
}
