// SPDX-License-Identifier: Apache-2.0

// Package source opens report files, unpacking the gzip and zip attachments
// that aggregate reports are usually mailed as.
package source

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
)

// Stdin is the path that selects standard input.
const Stdin = "-"

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zipMagic  = []byte("PK\x03\x04")
)

// ErrNoReport is returned for an archive without a report entry.
var ErrNoReport = errors.New("archive contains no report")

// Open returns a reader over the XML document at name. Compression is
// detected from content, not from the file extension.
func Open(name string) (io.ReadCloser, error) {
	if name == Stdin {
		return Wrap(io.NopCloser(os.Stdin))
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open report: %w", err)
	}
	return Wrap(f)
}

// Wrap detects the encoding of rc and returns a reader over the plain
// document. Closing the result closes rc.
func Wrap(rc io.ReadCloser) (io.ReadCloser, error) {
	br := bufio.NewReader(rc)
	// A short read means a tiny plain document; let the decoder report it.
	magic, _ := br.Peek(len(zipMagic))

	switch {
	case bytes.HasPrefix(magic, gzipMagic):
		zr, err := gzip.NewReader(br)
		if err != nil {
			_ = rc.Close()
			return nil, fmt.Errorf("failed to read gzip report: %w", err)
		}
		return &multiCloser{Reader: zr, closers: []io.Closer{zr, rc}}, nil
	case bytes.HasPrefix(magic, zipMagic):
		data, err := io.ReadAll(br)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read zip report: %w", err)
		}
		return openZipEntry(data)
	default:
		return &multiCloser{Reader: br, closers: []io.Closer{rc}}, nil
	}
}

// openZipEntry returns the first .xml entry, or the first file when none has
// that extension.
func openZipEntry(data []byte) (io.ReadCloser, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to read zip report: %w", err)
	}
	var pick *zip.File
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if strings.EqualFold(path.Ext(f.Name), ".xml") {
			pick = f
			break
		}
		if pick == nil {
			pick = f
		}
	}
	if pick == nil {
		return nil, ErrNoReport
	}
	r, err := pick.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s in zip report: %w", pick.Name, err)
	}
	return r, nil
}

type multiCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiCloser) Close() error {
	var errs []error
	for _, c := range m.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
