// Package input reads the comma separated target list.
//
//	address,username,old_admin_password,new_admin_password[,new_service_password]
//
// Blank lines and lines starting with # are skipped. Lines are not validated
// here, see model.ParseRecord.
package input

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/CZERTAINLY/Rotator/internal/model"
)

// Lines iterates over the records of r. A line which can't be split is
// yielded with Line.Err set; the error of the iterator is only for read errors.
func Lines(r io.Reader) iter.Seq2[model.Line, error] {
	return func(yield func(model.Line, error) bool) {
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		cr.Comment = '#'
		cr.LazyQuotes = true
		for {
			fields, err := cr.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			var perr *csv.ParseError
			switch {
			case errors.As(err, &perr):
				if !yield(model.Line{Num: perr.StartLine, Err: perr.Err}, nil) {
					return
				}
				continue
			case err != nil:
				yield(model.Line{}, fmt.Errorf("reading input: %w", err))
				return
			}
			num, _ := cr.FieldPos(0)
			if !yield(model.Line{Num: num, Fields: fields}, nil) {
				return
			}
		}
	}
}

// ReadAll collects every line of r.
func ReadAll(r io.Reader) ([]model.Line, error) {
	var ret []model.Line
	for line, err := range Lines(r) {
		if err != nil {
			return nil, err
		}
		ret = append(ret, line)
	}
	return ret, nil
}

func ReadFile(path string) ([]model.Line, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return ReadAll(f)
}
