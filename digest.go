package mdiff

import (
	"crypto/sha256"
	"fmt"
	"hash"
	"io"
)

// digester accumulates a SHA-256 over every byte a Source hands out.
type digester struct {
	h   hash.Hash
	one [1]byte
}

func newDigester() *digester {
	return &digester{h: sha256.New()}
}

func (d *digester) add(b byte) {
	d.one[0] = b
	d.h.Write(d.one[:])
}

func (d *digester) String() string {
	return fmt.Sprintf("%064x", d.h.Sum(nil))
}

// drain reads s to the end so its digest and size cover the whole input.
func drain(s *Source) error {
	for {
		_, err := s.ReadByte()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
