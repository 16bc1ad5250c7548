package records

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// FileReferenceType tags a placeholder object stored instead of file bytes.
const FileReferenceType = "fileReference"

// FileReference stands in for a file whose bytes are not kept in local
// storage. Once a field holds a reference the original bytes are gone.
type FileReference struct {
	Type         string `json:"type"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	FileType     string `json:"fileType"`
	TooLarge     bool   `json:"tooLarge,omitempty"`
	Truncated    bool   `json:"truncated,omitempty"`
	OriginalSize int64  `json:"originalSize,omitempty"`
	ResizedSize  int64  `json:"resizedSize,omitempty"`
}

type FileKind uint8

const (
	FileEmpty FileKind = iota
	FileInline
	FileRef
)

func (k FileKind) String() string {
	switch k {
	case FileInline:
		return "inline"
	case FileRef:
		return "reference"
	default:
		return "empty"
	}
}

// FileField is an attachment slot on a record: empty, an inline data URL, or
// a FileReference. On the wire it is null, a string, or an object.
type FileField struct {
	kind    FileKind
	dataURL string
	ref     FileReference
}

func InlineFile(dataURL string) FileField {
	if dataURL == "" {
		return FileField{}
	}
	return FileField{kind: FileInline, dataURL: dataURL}
}

func ReferenceFile(ref FileReference) FileField {
	if ref.Type == "" {
		ref.Type = FileReferenceType
	}
	return FileField{kind: FileRef, ref: ref}
}

func (f FileField) Kind() FileKind { return f.kind }

func (f FileField) IsEmpty() bool { return f.kind == FileEmpty }

func (f FileField) DataURL() (string, bool) {
	return f.dataURL, f.kind == FileInline
}

func (f FileField) Ref() (FileReference, bool) {
	return f.ref, f.kind == FileRef
}

func (f FileField) MarshalJSON() ([]byte, error) {
	switch f.kind {
	case FileInline:
		return json.Marshal(f.dataURL)
	case FileRef:
		return json.Marshal(f.ref)
	default:
		return []byte("null"), nil
	}
}

func (f *FileField) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		*f = FileField{}
		return nil
	case trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = InlineFile(s)
		return nil
	case trimmed[0] == '{':
		var ref FileReference
		if err := json.Unmarshal(trimmed, &ref); err != nil {
			return err
		}
		*f = ReferenceFile(ref)
		return nil
	default:
		return errors.New("file field must be null, a string or an object")
	}
}

// DataURLMIME returns the media type of a data URL, or "" when s is not one.
func DataURLMIME(s string) string {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return ""
	}
	end := strings.IndexAny(rest, ";,")
	if end < 0 {
		return ""
	}
	return rest[:end]
}
