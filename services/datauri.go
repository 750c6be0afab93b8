package services

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

// DataURI is an inline image: data:<mime>;base64,<payload>.
type DataURI struct {
	MIMEType string
	Data     []byte
}

func ParseDataURI(raw string) (DataURI, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(raw), "data:")
	if !ok {
		return DataURI{}, fmt.Errorf("%w: missing data: prefix", ErrInvalidDataURI)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return DataURI{}, fmt.Errorf("%w: missing payload", ErrInvalidDataURI)
	}
	mimeType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return DataURI{}, fmt.Errorf("%w: payload must be base64", ErrInvalidDataURI)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return DataURI{}, fmt.Errorf("%w: unsupported media type %q", ErrInvalidDataURI, mimeType)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return DataURI{}, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	if len(data) == 0 {
		return DataURI{}, fmt.Errorf("%w: empty payload", ErrInvalidDataURI)
	}
	return DataURI{MIMEType: mimeType, Data: data}, nil
}

// NewDataURI sniffs the MIME type when it is not known.
func NewDataURI(data []byte, mimeType string) DataURI {
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return DataURI{MIMEType: mimeType, Data: data}
}

func (d DataURI) String() string {
	return "data:" + d.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(d.Data)
}

func IsDataURI(ref string) bool {
	return strings.HasPrefix(ref, "data:")
}

// Extension returns the file extension used for stored copies.
func (d DataURI) Extension() string {
	switch d.MIMEType {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".bin"
	}
}
