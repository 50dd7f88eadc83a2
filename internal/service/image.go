package service

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// EncodeDataURI reads r fully and returns "data:<mime>;base64,<payload>".
// The MIME type is sniffed from the content. Any type and size is accepted.
func EncodeDataURI(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	mime := mimetype.Detect(data).String()
	// "text/plain; charset=utf-8" -> "text/plain"
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// EncodeFile is EncodeDataURI over the file at path.
func EncodeFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	return EncodeDataURI(f)
}

// ParseDataURI splits "data:image/png;base64,iVBOR..." into its MIME type and
// decoded payload.
func ParseDataURI(uri string) (string, []byte, error) {
	if !strings.HasPrefix(uri, "data:") {
		return "", nil, fmt.Errorf("invalid data URI")
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, "data:"), ",", 2)
	if len(parts) != 2 {
		return "", nil, fmt.Errorf("invalid data URI")
	}
	meta, ok := strings.CutSuffix(parts[0], ";base64")
	if !ok {
		return "", nil, fmt.Errorf("data URI is not base64 encoded")
	}
	payload, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", nil, fmt.Errorf("decode base64: %w", err)
	}
	return meta, payload, nil
}
