package scan

import (
	"cmp"
	"maps"
	"slices"

	"github.com/matzehuels/scantower/pkg/core/model"
	"github.com/matzehuels/scantower/pkg/errors"
)

// Merge combines two runs, for example of the same project scanned in
// several jobs. Provenance resolution results are united; scan results are
// merged per provenance and scanner, file lists per provenance; the scanner
// lists per identifier are united; and the time window covers both runs.
// The environment of a is kept.
//
// The configurations of both runs must be equal, otherwise an error with
// code ErrCodeConfigMismatch is returned. The merged data is validated like
// any new run, so conflicting resolution results for the same identifier are
// reported with code ErrCodeInvariant.
//
// Scan results are treated as sets: a result present in both runs is taken
// once. The output does not depend on the order of the inputs' elements.
func Merge(a, b *ScannerRun) (*ScannerRun, error) {
	if !a.config.Equal(b.config) {
		return nil, errors.New(errors.ErrCodeConfigMismatch,
			"cannot merge scanner runs with different configurations")
	}

	data := RunData{
		StartTime:   minTime(a.startTime, b.startTime),
		EndTime:     maxTime(a.endTime, b.endTime),
		Environment: a.environment,
		Config:      a.config,
		Scanners:    make(map[model.Identifier][]string),
	}

	data.Provenances = slices.Clone(a.provenances)
	for i := range b.provenances {
		p := &b.provenances[i]
		if existing, ok := a.byID[p.ID]; ok && existing.equal(p) {
			continue
		}
		data.Provenances = append(data.Provenances, *p)
	}

	results := make(map[resultKey]ScanResult)
	folded := make(map[resultKey][]ScanResult)
	for _, sr := range append(slices.Clone(a.scanResults), b.scanResults...) {
		key := resultKey{sr.Provenance, sr.Scanner}
		if slices.ContainsFunc(folded[key], sr.Equal) {
			continue
		}
		folded[key] = append(folded[key], sr)
		existing, ok := results[key]
		if !ok {
			results[key] = sr
			continue
		}
		merged, err := existing.Merge(sr)
		if err != nil {
			return nil, err
		}
		results[key] = merged
	}
	data.ScanResults = slices.SortedFunc(maps.Values(results), CompareScanResults)

	files := make(map[model.KnownProvenance]FileList)
	for _, fl := range append(slices.Clone(a.files), b.files...) {
		existing, ok := files[fl.Provenance]
		if !ok {
			files[fl.Provenance] = fl
			continue
		}
		merged, err := existing.Merge(fl)
		if err != nil {
			return nil, err
		}
		files[fl.Provenance] = merged
	}
	data.Files = slices.SortedFunc(maps.Values(files), func(x, y FileList) int {
		return cmp.Compare(model.ProvenanceKey(x.Provenance), model.ProvenanceKey(y.Provenance))
	})

	for _, run := range []*ScannerRun{a, b} {
		for id, names := range run.scanners {
			data.Scanners[id] = append(data.Scanners[id], names...)
		}
	}

	return NewScannerRun(data)
}
