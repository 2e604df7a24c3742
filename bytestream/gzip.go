package bytestream

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"

	"github.com/mctools/mcpl-go/errs"
)

// gzipStream is the Stream implementation backed by a streaming gzip
// reader or writer. Gzip is not a seekable container format, so Seek is
// implemented per the discard-forward / reopen-and-discard fallback
// documented in spec §4.1 and §9: klauspost/compress/gzip, like every
// other streaming gzip implementation, exposes no native random access.
type gzipStream struct {
	path string // retained to support reopening on a backward seek

	file *os.File
	zr   *gzip.Reader
	zw   *gzip.Writer

	pos int64 // logical (uncompressed) byte offset
}

var _ Stream = (*gzipStream)(nil)

func newGzipReadStream(f *os.File) (*gzipStream, error) {
	zr, err := gzip.NewReader(f)
	if err != nil {
		_ = f.Close()

		return nil, fmt.Errorf("%w: opening gzip stream %q: %v", errs.ErrFormat, f.Name(), err)
	}

	return &gzipStream{path: f.Name(), file: f, zr: zr}, nil
}

// newGzipWriteStream creates path as a gzip-compressed stream, used by
// GzipFileInPlace.
func newGzipWriteStream(path string) (*gzipStream, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: creating %q: %v", errs.ErrIO, path, err)
	}

	return &gzipStream{path: path, file: f, zw: gzip.NewWriter(f)}, nil
}

func (s *gzipStream) Read(p []byte) error {
	if s.zr == nil {
		return fmt.Errorf("%w: gzip stream is not open for reading", errs.ErrIO)
	}

	_, err := io.ReadFull(s.zr, p)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrShortRead, err)
	}
	s.pos += int64(len(p))

	return nil
}

func (s *gzipStream) TryRead(p []byte) (int, error) {
	if s.zr == nil {
		return 0, fmt.Errorf("%w: gzip stream is not open for reading", errs.ErrIO)
	}

	n, err := io.ReadFull(s.zr, p)
	s.pos += int64(n)
	if err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF { //nolint:errorlint
			return n, io.EOF
		}

		return n, fmt.Errorf("%w: %v", errs.ErrIO, err)
	}

	return n, nil
}

func (s *gzipStream) Write(p []byte) error {
	if s.zw == nil {
		return fmt.Errorf("%w: gzip stream is not open for writing", errs.ErrIO)
	}

	n, err := s.zw.Write(p)
	s.pos += int64(n)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIO, err)
	}
	if n != len(p) {
		return fmt.Errorf("%w: wrote %d of %d bytes", errs.ErrShortWrite, n, len(p))
	}

	return nil
}

// Seek sets the logical uncompressed offset. A forward seek discards
// bytes in fixed-size chunks; a backward seek reopens the underlying
// file and gzip reader from the start and then discards forward,
// because a streaming gzip.Reader cannot rewind (§4.1, §9).
func (s *gzipStream) Seek(target int64) error {
	if s.zw != nil {
		return fmt.Errorf("%w: cannot seek a gzip stream open for writing", errs.ErrIO)
	}

	if target < s.pos {
		if err := s.reopen(); err != nil {
			return err
		}
	}

	return s.discardTo(target)
}

func (s *gzipStream) reopen() error {
	_ = s.zr.Close()
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w: rewinding gzip file %q: %v", errs.ErrIO, s.path, err)
	}

	zr, err := gzip.NewReader(s.file)
	if err != nil {
		return fmt.Errorf("%w: reopening gzip stream %q: %v", errs.ErrFormat, s.path, err)
	}

	s.zr = zr
	s.pos = 0

	return nil
}

func (s *gzipStream) discardTo(target int64) error {
	remaining := target - s.pos
	if remaining < 0 {
		return fmt.Errorf("%w: gzip seek target precedes stream position after reopen", errs.ErrIO)
	}

	buf := make([]byte, discardChunkSize)
	for remaining > 0 {
		n := int64(len(buf))
		if remaining < n {
			n = remaining
		}

		read, err := io.ReadFull(s.zr, buf[:n])
		s.pos += int64(read)
		remaining -= int64(read)
		if err != nil {
			return fmt.Errorf("%w: discarding toward gzip seek target: %v", errs.ErrIO, err)
		}
	}

	return nil
}

func (s *gzipStream) Tell() (int64, error) {
	return s.pos, nil
}

func (s *gzipStream) Close() error {
	var err error
	if s.zr != nil {
		err = s.zr.Close()
	}
	if s.zw != nil {
		if werr := s.zw.Close(); werr != nil && err == nil {
			err = werr
		}
	}
	if cerr := s.file.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("%w: closing gzip stream %q: %v", errs.ErrIO, s.path, err)
	}

	return nil
}

// GzipFileInPlace compresses the plain file at path into "<path>.gz" and
// removes the original, returning the new path. This is MCPL's
// "gzip this file in place" black-box operation (§1, §4.4's
// CloseAndGzip). The compressed file is written to a temporary sibling
// and renamed into place so a crash mid-write never leaves a truncated
// ".gz" file at the final name (§4.1: "renamable atomically where
// possible").
func GzipFileInPlace(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: opening %q to gzip: %v", errs.ErrIO, path, err)
	}
	defer src.Close()

	finalPath := path + ".gz"
	tmpPath := finalPath + ".tmp"
	if Exists(finalPath) {
		return "", fmt.Errorf("%w: %q", errs.ErrOutputExist, finalPath)
	}

	dst, err := newGzipWriteStream(tmpPath)
	if err != nil {
		return "", err
	}

	buf := make([]byte, 256*1024)
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			if werr := dst.Write(buf[:n]); werr != nil {
				_ = dst.Close()
				_ = os.Remove(tmpPath)

				return "", werr
			}
		}
		if rerr != nil {
			if rerr == io.EOF { //nolint:errorlint
				break
			}
			_ = dst.Close()
			_ = os.Remove(tmpPath)

			return "", fmt.Errorf("%w: reading %q: %v", errs.ErrIO, path, rerr)
		}
	}

	if err := dst.Close(); err != nil {
		_ = os.Remove(tmpPath)

		return "", err
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)

		return "", fmt.Errorf("%w: renaming %q to %q: %v", errs.ErrIO, tmpPath, finalPath, err)
	}

	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("%w: removing original %q after gzip: %v", errs.ErrIO, path, err)
	}

	return finalPath, nil
}
