package vfs

import (
	"archive/tar"
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression names accepted by WriteArchive
const (
	CompressionNone = "none"
	CompressionGzip = "gzip"
	CompressionZstd = "zstd"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// ErrUnknownCompression is returned for a compression name WriteArchive
// does not support
var ErrUnknownCompression = errors.New("unknown compression")

// WriteArchive writes every file as a tar stream, compressed with
// compression ("" means gzip). Entries are written in sorted path order.
func WriteArchive(ctx context.Context, w io.Writer, fs *FS, compression string) (int, error) {
	var out io.WriteCloser
	switch compression {
	case "", CompressionGzip:
		out = gzip.NewWriter(w)
	case CompressionZstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return 0, fmt.Errorf("zstd writer: %w", err)
		}
		out = zw
	case CompressionNone:
		out = nopWriteCloser{w}
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCompression, compression)
	}

	return writeTar(ctx, out, fs)
}

// writeTar writes the tar stream to out and closes out on every path, so a
// compressor never outlives a failed or cancelled export.
func writeTar(ctx context.Context, out io.WriteCloser, fs *FS) (count int, err error) {
	closed := false
	defer func() {
		if !closed {
			_ = out.Close()
		}
	}()

	tw := tar.NewWriter(out)
	now := time.Now()

	paths := fs.Paths()
	sort.Strings(paths)
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		content, ok := fs.Get(path)
		if !ok {
			continue
		}
		hdr := &tar.Header{
			Name:     path,
			Mode:     0o644,
			Size:     int64(len(content)),
			ModTime:  now,
			Typeflag: tar.TypeReg,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return count, fmt.Errorf("write header %s: %w", path, err)
		}
		if _, err := io.WriteString(tw, content); err != nil {
			return count, fmt.Errorf("write %s: %w", path, err)
		}
		count++
	}

	if err := tw.Close(); err != nil {
		return count, fmt.Errorf("close tar: %w", err)
	}
	closed = true
	if err := out.Close(); err != nil {
		return count, fmt.Errorf("close compressor: %w", err)
	}
	return count, nil
}

// ReadArchive adds the regular files of a tar stream to fs and returns how
// many were added. Gzip and zstd compression are detected from the stream
// header. Files larger than maxFileSize (DefaultMaxFileSize when zero) are
// skipped, and entry names are normalized like any other VFS path.
func ReadArchive(ctx context.Context, r io.Reader, fs *FS, maxFileSize int64) (int, error) {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}

	br := bufio.NewReader(r)
	head, _ := br.Peek(4)

	var in io.Reader = br
	switch {
	case bytes.HasPrefix(head, gzipMagic):
		gz, err := gzip.NewReader(br)
		if err != nil {
			return 0, fmt.Errorf("gzip: %w", err)
		}
		defer gz.Close()
		in = gz
	case bytes.HasPrefix(head, zstdMagic):
		zr, err := zstd.NewReader(br)
		if err != nil {
			return 0, fmt.Errorf("zstd: %w", err)
		}
		defer zr.Close()
		in = zr
	}

	tr := tar.NewReader(in)
	count := 0
	for {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		hdr, err := tr.Next()
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return count, fmt.Errorf("read archive: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg || hdr.Size > maxFileSize {
			continue
		}

		path := Normalize(hdr.Name)
		if path == "" {
			continue
		}
		data, err := io.ReadAll(io.LimitReader(tr, maxFileSize))
		if err != nil {
			return count, fmt.Errorf("read %s: %w", hdr.Name, err)
		}
		fs.Add(path, string(data))
		count++
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
