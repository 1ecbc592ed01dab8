package io

import (
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/scantower/pkg/core/result"
)

// WriteResult encodes res in format f and writes it to w. Collections are
// written in a canonical order, so equal results give byte-identical
// output. The output can be read back with [ReadResult].
func WriteResult(res *result.Result, w io.Writer, f Format) error {
	return Encode(w, f, fromResult(res))
}

// ExportFile writes res to path. The format is taken from the file
// extension.
func ExportFile(res *result.Result, path string) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	return writeFile(path, func(w io.Writer) error { return WriteResult(res, w, f) })
}

// ExportValue writes any value, such as a report, to path. The format is
// taken from the file extension.
func ExportValue(v any, path string) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	return writeFile(path, func(w io.Writer) error { return Encode(w, f, v) })
}

func writeFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(file); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
