package attachments

import (
	"encoding/base64"
	"mime"
	"strings"

	"hrmsync/internal/domain/records"
)

// OptimizeEmployee replaces every inline attachment longer than maxSizeBytes
// with a truncated file reference. It is the last check before a record is
// serialized, catching payloads that reached the record without going
// through ProcessFileForStorage. It returns the paths it replaced.
//
// The reference is named after the slot, since a data URL carries no file
// name; Size is the decoded payload size and OriginalSize the data URL length.
func OptimizeEmployee(emp *records.Employee, maxSizeBytes int64) []string {
	if maxSizeBytes <= 0 {
		maxSizeBytes = DefaultMaxSizeBytes
	}
	var replaced []string
	for _, slot := range emp.FileSlots() {
		dataURL, ok := slot.Field.DataURL()
		if !ok || int64(len(dataURL)) <= maxSizeBytes {
			continue
		}
		fileType := records.DataURLMIME(dataURL)
		*slot.Field = records.ReferenceFile(records.FileReference{
			Name:         slotFileName(slot.Path, fileType),
			Size:         payloadSize(dataURL),
			FileType:     fileType,
			Truncated:    true,
			OriginalSize: int64(len(dataURL)),
		})
		replaced = append(replaced, slot.Path)
	}
	return replaced
}

var extensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// slotFileName turns a slot path such as "qualifications[17].documentUrl"
// into "qualifications-17-documentUrl.pdf".
func slotFileName(path, fileType string) string {
	name := strings.NewReplacer("[", "-", "].", "-", "]", "", ".", "-").Replace(path)
	ext, ok := extensions[fileType]
	if !ok {
		ext = ".bin"
		if found, err := mime.ExtensionsByType(fileType); err == nil && len(found) > 0 {
			ext = found[0]
		}
	}
	return name + ext
}

// payloadSize is the number of bytes the data URL decodes to.
func payloadSize(dataURL string) int64 {
	header, data, ok := strings.Cut(dataURL, ",")
	if !ok {
		return 0
	}
	if !strings.HasSuffix(header, ";base64") {
		return int64(len(data))
	}
	data = strings.TrimRight(data, "=")
	return int64(base64.RawStdEncoding.DecodedLen(len(data)))
}
