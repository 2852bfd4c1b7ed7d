package mdiff

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"errors"
	"io"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ulikunitz/xz"
	"go.uber.org/zap"
)

// sniffLength is how much of an input is peeked to detect compression.
const sniffLength = 3072

// Source is a read-only, sequentially read byte source.
type Source struct {
	// Filename names the input in reports and errors.
	Filename string

	br      *bufio.Reader
	closers []io.Closer

	// n counts the bytes handed out by ReadByte.
	n   int64
	sum *digester
}

// NewSource wraps r as a Source called name. The caller keeps ownership
// of r; Close on the returned Source does not close it.
func NewSource(name string, r io.Reader) *Source {
	return &Source{
		Filename: name,
		br:       bufio.NewReader(r),
	}
}

// OpenSource opens filename for reading. When decompress is set, gzip,
// bzip2 and xz content is detected and decoded transparently.
func OpenSource(filename string, decompress bool, log *zap.Logger) (*Source, error) {
	if log == nil {
		log = zap.NewNop()
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil, &OpenError{Path: filename, Err: err}
	}
	s := &Source{
		Filename: filename,
		closers:  []io.Closer{f},
	}

	var src io.Reader = f
	if decompress {
		src, err = s.decoder(f, log)
		if err != nil {
			s.Close()
			return nil, &OpenError{Path: filename, Err: err}
		}
	}
	s.br = bufio.NewReader(src)

	log.Debug("opened input",
		zap.String("path", filename),
		zap.Bool("decompress", decompress))
	return s, nil
}

// decoder picks a decompressor from the leading bytes of r. If the content
// looks compressed but the decoder rejects its header, the raw bytes are
// used instead.
func (s *Source) decoder(r io.Reader, log *zap.Logger) (io.Reader, error) {
	br := bufio.NewReaderSize(r, sniffLength)
	head, _ := br.Peek(sniffLength)
	mt := mimetype.Detect(head)

	var (
		open  func(io.Reader) (io.Reader, error)
		check = func(head []byte) error { return probe(open, head) }
	)
	switch {
	case mt.Is("application/gzip"):
		open = func(r io.Reader) (io.Reader, error) {
			return gzip.NewReader(r)
		}
	case mt.Is("application/x-bzip2"):
		open = func(r io.Reader) (io.Reader, error) {
			return bzip2.NewReader(r), nil
		}
		check = checkBzip2
	case mt.Is("application/x-xz"):
		open = func(r io.Reader) (io.Reader, error) {
			return xz.NewReader(r)
		}
	default:
		log.Debug("input is not compressed",
			zap.String("path", s.Filename),
			zap.String("mime", mt.String()))
		return br, nil
	}

	// probe on a copy of the header so a failure leaves br untouched
	if err := check(head); err != nil {
		log.Warn("input looks compressed but failed to open, comparing raw bytes",
			zap.String("path", s.Filename),
			zap.String("mime", mt.String()),
			zap.Error(err))
		return br, nil
	}

	log.Debug("decompressing input",
		zap.String("path", s.Filename),
		zap.String("mime", mt.String()))
	zr, err := open(br)
	if err != nil {
		return nil, err
	}
	if c, ok := zr.(io.Closer); ok {
		s.closers = append(s.closers, c)
	}
	return zr, nil
}

func probe(open func(io.Reader) (io.Reader, error), head []byte) error {
	zr, err := open(bytes.NewReader(append([]byte(nil), head...)))
	if c, ok := zr.(io.Closer); ok && err == nil {
		c.Close()
	}
	return err
}

// checkBzip2 validates the stream header. bzip2 only parses it on the
// first read, and a block cut short by the peek window is not an error here.
func checkBzip2(head []byte) error {
	var one [1]byte
	_, err := bzip2.NewReader(bytes.NewReader(head)).Read(one[:])
	var serr bzip2.StructuralError
	if errors.As(err, &serr) {
		return err
	}
	return nil
}

// Name returns the name the Source was opened or created with.
func (s *Source) Name() string {
	return s.Filename
}

// ReadByte returns the next byte, or io.EOF once the input is exhausted.
// Any other failure is returned as a *ReadError.
func (s *Source) ReadByte() (byte, error) {
	b, err := s.br.ReadByte()
	if err != nil {
		if err == io.EOF {
			return 0, io.EOF
		}
		return 0, &ReadError{Path: s.Filename, Offset: s.n, Err: err}
	}
	s.n++
	if s.sum != nil {
		s.sum.add(b)
	}
	return b, nil
}

// Close releases everything OpenSource acquired, innermost first.
func (s *Source) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
