package scan

import (
	"cmp"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/scantower/pkg/core/model"
	"github.com/matzehuels/scantower/pkg/errors"
)

// ScannerDetails identifies the scanner that produced a result.
type ScannerDetails struct {
	Name          string `json:"name" yaml:"name"`
	Version       string `json:"version" yaml:"version"`
	Configuration string `json:"configuration" yaml:"configuration"`
}

// CompareScannerDetails orders details by name, version and configuration.
func CompareScannerDetails(a, b ScannerDetails) int {
	if c := cmp.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	if c := model.CompareAlphaNumeric(a.Version, b.Version); c != 0 {
		return c
	}
	return cmp.Compare(a.Configuration, b.Configuration)
}

// ScanResult is what one scanner found in the source code of one
// provenance.
//
// Results stored in a [ScannerRun] always refer to a [model.KnownProvenance]
// at the root of a repository. Reconciled results returned by the run refer
// to the provenance of the package they describe, or to
// [model.UnknownProvenance] for placeholders of packages whose provenance
// could not be resolved.
type ScanResult struct {
	Provenance     model.Provenance
	Scanner        ScannerDetails
	Summary        ScanSummary
	AdditionalData map[string]string
}

// Merge combines two results of the same scanner for the same provenance.
// Results for different provenances or scanners cannot be merged.
func (r ScanResult) Merge(other ScanResult) (ScanResult, error) {
	if r.Provenance != other.Provenance {
		return ScanResult{}, errors.Invariant("cannot merge scan results for %s and %s",
			provenanceString(r.Provenance), provenanceString(other.Provenance))
	}
	if r.Scanner != other.Scanner {
		return ScanResult{}, errors.Invariant("cannot merge scan results of scanners %s and %s",
			r.Scanner.Name, other.Scanner.Name)
	}
	return ScanResult{
		Provenance:     r.Provenance,
		Scanner:        r.Scanner,
		Summary:        r.Summary.Merge(other.Summary),
		AdditionalData: mergeData(r.AdditionalData, other.AdditionalData),
	}, nil
}

// Equal reports whether both results hold the same data.
func (r ScanResult) Equal(other ScanResult) bool {
	return r.Provenance == other.Provenance &&
		r.Scanner == other.Scanner &&
		r.Summary.Equal(other.Summary) &&
		maps.Equal(r.AdditionalData, other.AdditionalData)
}

// FilterByPath narrows the summary to the directory dir.
func (r ScanResult) FilterByPath(dir string) ScanResult {
	r.Summary = r.Summary.FilterByPath(dir)
	return r
}

// FilterByIgnorePatterns drops findings matching one of the patterns.
func (r ScanResult) FilterByIgnorePatterns(patterns []string) ScanResult {
	r.Summary = r.Summary.FilterByIgnorePatterns(patterns)
	return r
}

// CompareScanResults orders results by provenance, then scanner.
func CompareScanResults(a, b ScanResult) int {
	if c := cmp.Compare(model.ProvenanceKey(a.Provenance), model.ProvenanceKey(b.Provenance)); c != 0 {
		return c
	}
	return CompareScannerDetails(a.Scanner, b.Scanner)
}

// mergeData returns the union of two maps; keys in a win.
func mergeData(a, b map[string]string) map[string]string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := maps.Clone(b)
	if out == nil {
		out = make(map[string]string, len(a))
	}
	maps.Copy(out, a)
	return out
}

func provenanceString(p model.Provenance) string {
	if p == nil {
		return "<nil>"
	}
	return p.String()
}

// FileEntry is a file with its SHA-1 checksum.
type FileEntry struct {
	Path string `json:"path" yaml:"path"`
	SHA1 string `json:"sha1" yaml:"sha1"`
}

// FileList lists the files of the source code of a provenance.
type FileList struct {
	Provenance model.KnownProvenance
	Files      []FileEntry
}

// Merge returns the union of the files of two lists for the same
// provenance, sorted by path.
func (l FileList) Merge(other FileList) (FileList, error) {
	if l.Provenance != other.Provenance {
		return FileList{}, errors.Invariant("cannot merge file lists for %s and %s",
			provenanceString(l.Provenance), provenanceString(other.Provenance))
	}
	return FileList{Provenance: l.Provenance, Files: sortFiles(append(slices.Clone(l.Files), other.Files...))}, nil
}

// FilterByPath keeps the files under dir. Paths stay relative to the root.
func (l FileList) FilterByPath(dir string) FileList {
	if isRootDir(dir) {
		return l
	}
	var files []FileEntry
	for _, f := range l.Files {
		if isUnder(f.Path, dir) {
			files = append(files, f)
		}
	}
	l.Files = files
	return l
}

// FilterByIgnorePatterns drops files matching one of the patterns.
func (l FileList) FilterByIgnorePatterns(patterns []string) FileList {
	if len(patterns) == 0 {
		return l
	}
	l.Files = slices.DeleteFunc(slices.Clone(l.Files), func(f FileEntry) bool {
		return matchesAny(patterns, f.Path)
	})
	return l
}

func sortFiles(files []FileEntry) []FileEntry {
	slices.SortFunc(files, func(a, b FileEntry) int {
		if c := strings.Compare(a.Path, b.Path); c != 0 {
			return c
		}
		return strings.Compare(a.SHA1, b.SHA1)
	})
	return slices.Compact(files)
}
