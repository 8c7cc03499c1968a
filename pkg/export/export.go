// Package export writes documents as JSON lines, optionally zstd compressed.
package export

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/jmgilman/go/errors"
	"github.com/klauspost/compress/zstd"

	"github.com/goliatone/go-document-cache/document"
)

// Options controls the output encoding.
type Options struct {
	// Compress wraps the output in a zstd stream.
	Compress bool
	// Level is the zstd encoder level. Zero selects zstd.SpeedDefault.
	Level zstd.EncoderLevel
}

// Write encodes docs to w, one JSON object per line, and returns the number
// of documents written.
func Write(w io.Writer, docs []document.Document, opts Options) (int, error) {
	if !opts.Compress {
		return writeLines(w, docs)
	}

	level := opts.Level
	if level == 0 {
		level = zstd.SpeedDefault
	}
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(level))
	if err != nil {
		return 0, errors.Wrap(err, errors.CodeInternal, "export: zstd writer")
	}

	n, err := writeLines(enc, docs)
	if err != nil {
		enc.Close()
		return n, err
	}
	if err := enc.Close(); err != nil {
		return n, errors.Wrap(err, errors.CodeInternal, "export: zstd close")
	}
	return n, nil
}

func writeLines(w io.Writer, docs []document.Document) (int, error) {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)

	for i, doc := range docs {
		if err := enc.Encode(doc); err != nil {
			return i, errors.Wrapf(err, errors.CodeInvalidInput, "export: document %d", i)
		}
	}
	if err := bw.Flush(); err != nil {
		return len(docs), errors.Wrap(err, errors.CodeInternal, "export: flush")
	}
	return len(docs), nil
}

// Read decodes JSON lines written by Write. compressed must match the
// Compress option used when writing.
func Read(r io.Reader, compressed bool) ([]document.Document, error) {
	if compressed {
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidInput, "export: zstd reader")
		}
		defer dec.Close()
		r = dec
	}

	docs := []document.Document{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	for line := 1; scanner.Scan(); line++ {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		doc, err := document.ParseJSON(scanner.Bytes())
		if err != nil {
			return nil, errors.Wrapf(err, errors.CodeInvalidInput, "export: line %d", line)
		}
		docs = append(docs, doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "export: read")
	}
	return docs, nil
}
