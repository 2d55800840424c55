// internal/historical/ingest.go

// Package historical turns an uploaded CSV of past projects into rows and
// summarizes them.
package historical

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"
)

// CSVContentType is the only attachment type accepted.
const CSVContentType = "text/csv"

var (
	ErrInvalidFileType = errors.New("INVALID_FILE_TYPE")
	ErrReadFailed      = errors.New("CSV_READ_FAILED")
)

// CheckContentType gates an attachment on its declared type. Media type
// parameters such as charset are ignored; anything else than text/csv is
// rejected before the content is read.
func CheckContentType(contentType string) error {
	mediaType := strings.TrimSpace(contentType)
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = parsed
	}
	if mediaType != CSVContentType {
		return fmt.Errorf("%w: %q", ErrInvalidFileType, contentType)
	}
	return nil
}

// Ingest splits text on "\n" and each line on ",". The first line holds
// the headers; every later line becomes a Row keyed by the trimmed
// headers. Quoting is not interpreted, so a comma inside quotes splits the
// cell. A trailing newline produces a final row whose first column is "".
// A leading UTF-8 byte order mark is dropped.
func Ingest(text string) []Row {
	text = strings.TrimPrefix(text, "\ufeff")
	lines := strings.Split(text, "\n")

	headers := strings.Split(lines[0], ",")
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	rows := make([]Row, 0, len(lines)-1)
	for _, line := range lines[1:] {
		cells := strings.Split(line, ",")

		var row Row
		for i, header := range headers {
			if i >= len(cells) {
				break
			}
			row.Set(header, strings.TrimSpace(cells[i]))
		}
		rows = append(rows, row)
	}
	return rows
}

// IngestReader applies the type gate and then ingests the whole stream.
func IngestReader(contentType string, r io.Reader) ([]Row, error) {
	if err := CheckContentType(contentType); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	return Ingest(string(data)), nil
}
