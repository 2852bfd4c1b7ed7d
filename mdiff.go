// Package mdiff compares two byte streams position by position and reports
// every offset at which they differ.
package mdiff

import (
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
)

// Comparator walks two Sources in lockstep. The zero-value is ready to use.
type Comparator struct {
	compat bool
	digest bool
	log    *zap.Logger
}

// SetCompat selects the legacy scan: it runs until the first input is
// exhausted and advances the reported offset twice per byte.
func (c *Comparator) SetCompat(on bool) {
	c.compat = on
}

// SetDigest enables SHA-256 digests of both inputs. Inputs are read to the
// end after the comparison so the digests cover their whole content.
func (c *Comparator) SetDigest(on bool) {
	c.digest = on
}

// SetLogger sets the logger used for diagnostics. Report lines are never
// written to it.
func (c *Comparator) SetLogger(log *zap.Logger) {
	c.log = log
}

func (c *Comparator) logger() *zap.Logger {
	if c.log == nil {
		return zap.NewNop()
	}
	return c.log
}

// Compare reads left and right byte by byte and writes one line to w for
// every position where they differ. Sources must not have been read yet.
//
// A partial Result is returned along with any read or write error.
func (c *Comparator) Compare(left, right *Source, w io.Writer) (*Result, error) {
	if c.digest {
		left.sum = newDigester()
		right.sum = newDigester()
	}

	res := &Result{}
	var err error
	if c.compat {
		err = c.scanCompat(left, right, w, res)
	} else {
		err = c.scan(left, right, w, res)
	}
	if err != nil {
		return res, err
	}

	if c.digest {
		for _, s := range []*Source{left, right} {
			if err := drain(s); err != nil {
				return res, err
			}
		}
		res.LeftSum, res.LeftSize = left.sum.String(), left.n
		res.RightSum, res.RightSize = right.sum.String(), right.n
	}
	res.When = time.Now()

	log := c.logger()
	if ce := log.Check(zap.DebugLevel, "comparison finished"); ce != nil {
		fields := []zap.Field{
			zap.String("left", left.Filename),
			zap.String("right", right.Filename),
		}
		for k, v := range res.Info() {
			fields = append(fields, zap.String(k, v))
		}
		ce.Write(fields...)
	}
	return res, nil
}

// next reads one byte from s. ok is false once s is exhausted.
func next(s *Source) (b byte, ok bool, err error) {
	b, err = s.ReadByte()
	if err == io.EOF {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return b, true, nil
}

// scan stops as soon as either input ends and reports any bytes left in
// the other one.
func (c *Comparator) scan(left, right *Source, w io.Writer, res *Result) error {
	var off int64
	for {
		b1, ok1, err := next(left)
		if err != nil {
			return err
		}
		b2, ok2, err := next(right)
		if err != nil {
			return err
		}

		if !ok1 || !ok2 {
			var longer *Source
			switch {
			case ok1:
				longer = left
			case ok2:
				longer = right
			default:
				return nil
			}
			res.ExtraIn = longer.Filename
			res.ExtraAt = off
			return writeExtra(w, longer.Filename, off)
		}

		if b1 != b2 {
			res.Mismatches++
			if err := writeMismatch(w, off, b1, true, b2, true); err != nil {
				return err
			}
		}
		off++
		res.Compared = off
	}
}

// scanCompat runs while the left input has data. An exhausted right input
// mismatches every remaining position.
func (c *Comparator) scanCompat(left, right *Source, w io.Writer, res *Result) error {
	var off int64

	b1, ok1, err := next(left)
	if err != nil {
		return err
	}
	b2, ok2, err := next(right)
	if err != nil {
		return err
	}

	for ok1 {
		if !ok2 || b1 != b2 {
			res.Mismatches++
			if err := writeMismatch(w, off, b1, true, b2, ok2); err != nil {
				return err
			}
		}
		res.Compared++

		if b1, ok1, err = next(left); err != nil {
			return err
		}
		if b2, ok2, err = next(right); err != nil {
			return err
		}
		if ok1 {
			off += 2
		}
	}
	return nil
}

// DiffAgainst compares s against other with a default Comparator.
func (s *Source) DiffAgainst(other *Source, w io.Writer) (*Result, error) {
	return (&Comparator{}).Compare(s, other, w)
}

//////////////////

// Result summarizes a finished comparison.
type Result struct {
	// Compared is the number of positions compared.
	Compared int64
	// Mismatches counts the report lines written for differing positions.
	Mismatches int

	// ExtraIn names the input that still had data when the other ended.
	// It is empty in compat mode or when both inputs end together.
	ExtraIn string
	// ExtraAt is the offset of the first byte beyond the shorter input.
	ExtraAt int64

	// Digests and sizes are only set when the Comparator digests inputs.
	LeftSum, RightSum   string
	LeftSize, RightSize int64

	When time.Time
}

// Identical reports whether no difference of any kind was found.
func (r *Result) Identical() bool {
	return r.Mismatches == 0 && r.ExtraIn == ""
}

// Info returns the Result as a flat set of statistics:
//
//	"when_checked": UTC timestamp when the comparison completed
//	"bytes_compared": positions compared
//	"mismatches": differing positions reported
//	"extra_data_in", "extra_data_at": the longer input and where it continues
//	"left_hash", "right_hash": SHA-256 of each input, when digested
//	"left_size", "right_size": total size of each input, when digested
func (r *Result) Info() map[string]string {
	m := map[string]string{
		"when_checked":   r.When.UTC().Format(time.RFC3339),
		"bytes_compared": fmt.Sprint(r.Compared),
		"mismatches":     fmt.Sprint(r.Mismatches),
	}
	if r.ExtraIn != "" {
		m["extra_data_in"] = r.ExtraIn
		m["extra_data_at"] = fmt.Sprintf("0x%x", r.ExtraAt)
	}
	if r.LeftSum != "" {
		m["left_hash"] = r.LeftSum
		m["right_hash"] = r.RightSum
		m["left_size"] = fmt.Sprint(r.LeftSize)
		m["right_size"] = fmt.Sprint(r.RightSize)
	}
	return m
}
