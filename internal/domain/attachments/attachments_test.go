package attachments

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"strings"
	"testing"

	"hrmsync/internal/domain/records"
)

func noiseImage(width, height int, seed int64) *image.RGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)), B: uint8(rng.Intn(256)), A: 255})
		}
	}
	return img
}

func encodeJPEG(t *testing.T, img image.Image, quality int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func decodeDataURL(t *testing.T, dataURL string) image.Image {
	t.Helper()
	_, payload, ok := strings.Cut(dataURL, ";base64,")
	if !ok {
		t.Fatalf("not a base64 data url: %.40s", dataURL)
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		t.Fatalf("decode base64: %v", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decode image: %v", err)
	}
	return img
}

func TestProcessFileNil(t *testing.T) {
	field, err := ProcessFileForStorage(context.Background(), nil, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !field.IsEmpty() {
		t.Fatalf("expected empty field, got %s", field.Kind())
	}
}

func TestProcessFileSmallImageInlined(t *testing.T) {
	data := encodePNG(t, image.NewRGBA(image.Rect(0, 0, 4, 4)))
	field, err := ProcessFileForStorage(context.Background(), &File{Name: "me.png", Type: "image/png", Data: data}, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dataURL, ok := field.DataURL()
	if !ok {
		t.Fatalf("expected inline data url, got %s", field.Kind())
	}
	if dataURL != "data:image/png;base64,"+base64.StdEncoding.EncodeToString(data) {
		t.Fatal("small images must be inlined unchanged")
	}
}

func TestProcessFileNonImages(t *testing.T) {
	tests := []struct {
		name         string
		size         int
		wantTooLarge bool
	}{
		{name: "small document", size: 1024},
		{name: "exactly at limit", size: 2048},
		{name: "oversized document", size: 4096, wantTooLarge: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			file := &File{Name: "contract.pdf", Type: "application/pdf", Data: make([]byte, tc.size)}
			field, err := ProcessFileForStorage(context.Background(), file, Options{MaxSizeBytes: 2048})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			ref, ok := field.Ref()
			if !ok {
				t.Fatalf("documents are never inlined, got %s", field.Kind())
			}
			if ref.Type != records.FileReferenceType || ref.Name != "contract.pdf" || ref.Size != int64(tc.size) || ref.FileType != "application/pdf" {
				t.Fatalf("unexpected reference %+v", ref)
			}
			if ref.TooLarge != tc.wantTooLarge {
				t.Fatalf("expected tooLarge=%v, got %v", tc.wantTooLarge, ref.TooLarge)
			}
		})
	}
}

func TestProcessFileOversizedImageIsResized(t *testing.T) {
	data := encodeJPEG(t, noiseImage(1600, 1000, 1), 100)
	file := &File{Name: "photo.jpg", Type: "image/jpeg", Data: data}

	field, err := ProcessFileForStorage(context.Background(), file, Options{MaxSizeBytes: int64(len(data)) - 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dataURL, ok := field.DataURL()
	if !ok {
		t.Fatalf("expected resized inline image, got %s", field.Kind())
	}
	if !strings.HasPrefix(dataURL, "data:image/jpeg;base64,") {
		t.Fatalf("unexpected data url prefix %.30s", dataURL)
	}
	bounds := decodeDataURL(t, dataURL).Bounds()
	if bounds.Dx() != 800 || bounds.Dy() != 500 {
		t.Fatalf("expected 800x500, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestProcessFileImageStillTooLarge(t *testing.T) {
	data := encodePNG(t, noiseImage(200, 200, 2))
	file := &File{Name: "scan.png", Type: "image/png", Data: data}

	field, err := ProcessFileForStorage(context.Background(), file, Options{MaxSizeBytes: 1000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ref, ok := field.Ref()
	if !ok {
		t.Fatalf("expected reference, got %s", field.Kind())
	}
	if !ref.TooLarge || ref.ResizedSize <= 1000 || ref.Size != int64(len(data)) {
		t.Fatalf("unexpected reference %+v", ref)
	}
}

func TestProcessFileUndecodableImage(t *testing.T) {
	file := &File{Name: "broken.jpg", Type: "image/jpeg", Data: bytes.Repeat([]byte{0x42}, 5000)}
	field, err := ProcessFileForStorage(context.Background(), file, Options{MaxSizeBytes: 1000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ref, ok := field.Ref()
	if !ok || !ref.TooLarge {
		t.Fatalf("expected tooLarge reference, got %s %+v", field.Kind(), ref)
	}
}

func TestProcessFileHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	data := encodeJPEG(t, noiseImage(300, 300, 3), 100)
	_, err := ProcessFileForStorage(ctx, &File{Name: "a.jpg", Type: "image/jpeg", Data: data}, Options{MaxSizeBytes: 100})
	if err == nil {
		t.Fatal("expected context error")
	}
}

func TestProcessFileNeverExceedsBudget(t *testing.T) {
	const budget = 3000
	sizes := []int{0, 1, 100, 2999, 3000, 3001, 10000}
	for _, size := range sizes {
		field, err := ProcessFileForStorage(context.Background(), &File{Name: "f.bin", Type: "application/octet-stream", Data: make([]byte, size)}, Options{MaxSizeBytes: budget})
		if err != nil {
			t.Fatalf("size %d: %v", size, err)
		}
		encoded, _ := json.Marshal(field)
		if len(encoded) > budget {
			t.Fatalf("size %d: serialized payload %d exceeds budget", size, len(encoded))
		}
	}

	for i, side := range []int{8, 40, 120} {
		data := encodePNG(t, noiseImage(side, side, int64(10+i)))
		field, err := ProcessFileForStorage(context.Background(), &File{Name: "i.png", Type: "image/png", Data: data}, Options{MaxSizeBytes: budget})
		if err != nil {
			t.Fatalf("side %d: %v", side, err)
		}
		if dataURL, ok := field.DataURL(); ok && len(dataURL) > budget {
			t.Fatalf("side %d: inline data url of %d bytes exceeds budget", side, len(dataURL))
		}
		if ref, ok := field.Ref(); ok && !ref.TooLarge {
			t.Fatalf("side %d: image references must be tagged tooLarge", side)
		}
	}
}

func TestFitDimensions(t *testing.T) {
	tests := []struct {
		w, h, maxW, maxH int
		wantW, wantH     int
	}{
		{w: 400, h: 300, maxW: 800, maxH: 800, wantW: 400, wantH: 300},
		{w: 1600, h: 1000, maxW: 800, maxH: 800, wantW: 800, wantH: 500},
		{w: 1000, h: 4000, maxW: 800, maxH: 800, wantW: 200, wantH: 800},
		{w: 801, h: 1, maxW: 800, maxH: 800, wantW: 800, wantH: 1},
	}
	for _, tc := range tests {
		w, h := FitDimensions(tc.w, tc.h, tc.maxW, tc.maxH)
		if w != tc.wantW || h != tc.wantH {
			t.Fatalf("FitDimensions(%d,%d): expected %dx%d, got %dx%d", tc.w, tc.h, tc.wantW, tc.wantH, w, h)
		}
	}
}

func TestPayloadSize(t *testing.T) {
	tests := map[string]int64{
		"data:application/pdf;base64,QUJD": 3,
		"data:image/png;base64,QUI=":       2,
		"data:text/plain,hello":            5,
		"data:image/png;base64":            0,
	}
	for dataURL, want := range tests {
		if got := payloadSize(dataURL); got != want {
			t.Fatalf("payloadSize(%q) = %d, want %d", dataURL, got, want)
		}
	}
}

func TestOptimizeEmployeeTruncatesOversizedFields(t *testing.T) {
	big := "data:image/jpeg;base64," + strings.Repeat("A", 2_000_000)
	small := "data:image/png;base64,AAAA"
	emp := records.Employee{
		ID:             "1",
		ProfilePicture: records.InlineFile(big),
		Qualifications: []records.Qualification{{ID: "q1", DocumentURL: records.InlineFile(small)}},
		MedicalRecords: []records.MedicalRecord{{ID: "m1", DocumentURL: records.InlineFile("data:application/pdf;base64," + strings.Repeat("B", 600_000))}},
	}

	replaced := OptimizeEmployee(&emp, DefaultMaxSizeBytes)
	if len(replaced) != 2 {
		t.Fatalf("expected two replacements, got %v", replaced)
	}

	ref, ok := emp.ProfilePicture.Ref()
	if !ok || !ref.Truncated || ref.OriginalSize != int64(len(big)) || ref.FileType != "image/jpeg" {
		t.Fatalf("unexpected profile picture reference %+v", ref)
	}
	// 2,000,000 base64 characters decode to 1,500,000 bytes
	if ref.Name != "profilePicture.jpg" || ref.Size != 1_500_000 {
		t.Fatalf("expected derived name and decoded size, got %+v", ref)
	}
	if emp.Qualifications[0].DocumentURL.Kind() != records.FileInline {
		t.Fatal("small attachments must stay inline")
	}
	if ref, ok := emp.MedicalRecords[0].DocumentURL.Ref(); !ok || ref.FileType != "application/pdf" || ref.Name != "medicalRecords-m1-documentUrl.pdf" {
		t.Fatalf("expected medical document to be truncated, got %+v", ref)
	}
}
