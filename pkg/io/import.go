package io

import (
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/scantower/pkg/core/result"
	"github.com/matzehuels/scantower/pkg/errors"
)

// ReadResult decodes a result document in format f from r.
//
// The decoded data is validated the same way as data built in memory: the
// scanner run goes through [scan.NewScannerRun] and the result through
// [result.Result.Validate]. Broken documents are reported with code
// ErrCodeInvalidFormat, structurally invalid data with the code of the
// violated rule, for example ErrCodeInvariant.
//
// ReadResult does not close r.
//
// [scan.NewScannerRun]: github.com/matzehuels/scantower/pkg/core/scan.NewScannerRun
func ReadResult(r io.Reader, f Format) (*result.Result, error) {
	var doc resultFile
	if err := Decode(r, f, &doc); err != nil {
		return nil, err
	}
	return doc.toResult()
}

// ImportFile reads the result file at path. The format is taken from the
// file extension.
func ImportFile(path string) (*result.Result, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "result file %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	res, err := ReadResult(file, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}
