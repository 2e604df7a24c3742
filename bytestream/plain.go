package bytestream

import (
	"fmt"
	"io"
	"os"

	"github.com/mctools/mcpl-go/errs"
)

// plainStream is the Stream implementation backed directly by an *os.File,
// using 64-bit offsets for Seek/Tell (§4.1).
type plainStream struct {
	file *os.File
}

var _ Stream = (*plainStream)(nil)

func (s *plainStream) Read(p []byte) error {
	_, err := io.ReadFull(s.file, p)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrShortRead, err)
	}

	return nil
}

func (s *plainStream) TryRead(p []byte) (int, error) {
	n, err := io.ReadFull(s.file, p)
	if err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF { //nolint:errorlint
			return n, io.EOF
		}

		return n, fmt.Errorf("%w: %v", errs.ErrIO, err)
	}

	return n, nil
}

func (s *plainStream) Write(p []byte) error {
	n, err := s.file.Write(p)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIO, err)
	}
	if n != len(p) {
		return fmt.Errorf("%w: wrote %d of %d bytes", errs.ErrShortWrite, n, len(p))
	}

	return nil
}

func (s *plainStream) Seek(pos int64) error {
	_, err := s.file.Seek(pos, io.SeekStart)
	if err != nil {
		return fmt.Errorf("%w: seeking to %d: %v", errs.ErrIO, pos, err)
	}

	return nil
}

func (s *plainStream) Tell() (int64, error) {
	pos, err := s.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errs.ErrIO, err)
	}

	return pos, nil
}

func (s *plainStream) Close() error {
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIO, err)
	}

	return nil
}

// Name returns the path the stream was opened from.
func (s *plainStream) Name() string {
	return s.file.Name()
}

// File exposes the underlying *os.File for callers (writer, merge) that
// need direct OS-level operations such as same-file detection or
// truncation that the Stream interface does not cover.
func (s *plainStream) File() *os.File {
	return s.file
}

// AsFile returns the underlying *os.File if st is backed by a plain
// file, or nil/false otherwise. Used by writer.Close to patch the
// particle count in place and by reader.Open to probe a plain file's size.
func AsFile(st Stream) (*os.File, bool) {
	ps, ok := st.(*plainStream)
	if !ok {
		return nil, false
	}

	return ps.file, true
}
