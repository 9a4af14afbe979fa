package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ReadUploadedImage reads an uploaded file into memory and returns its bytes
// with the detected mime type. Files larger than maxBytes are rejected.
func ReadUploadedImage(file *multipart.FileHeader, maxBytes int64) ([]byte, string, error) {
	if file.Size > maxBytes {
		return nil, "", fmt.Errorf("file is %d bytes, limit is %d", file.Size, maxBytes)
	}

	src, err := file.Open()
	if err != nil {
		return nil, "", err
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxBytes+1))
	if err != nil {
		return nil, "", err
	}
	if int64(len(data)) > maxBytes {
		return nil, "", fmt.Errorf("file exceeds %d bytes", maxBytes)
	}

	// Strip parameters such as "; charset=binary".
	mime, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
	return data, mime, nil
}
