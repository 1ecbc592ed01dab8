// Package scan models the output of source code scanners and reconciles it
// into results per package.
//
// # Storage Model
//
// Scanners do not scan packages, they scan provenances: a source artifact
// or a repository at a fixed revision. Several packages may share one
// provenance (all modules of a monorepo), and one package may span several
// provenances (a repository with Git submodules). A [ScannerRun] therefore
// stores:
//
//   - one [ProvenanceResolutionResult] per package, telling where its source
//     code lives and which sub-repositories the repository contains
//   - [ScanResult] values keyed by the root provenance of a repository,
//     never by a sub-directory of it
//   - [FileList] values keyed the same way
//
// # Reconciliation
//
// [ScannerRun.ScanResults] turns stored results back into results per
// package. For each scanner the results for the repository root and all
// sub-repositories are merged, sub-repository findings are moved below their
// path, and the merged result is narrowed to the package directory:
//
//	run, err := scan.NewScannerRun(data)
//	if err != nil {
//	    return err // ErrCodeInvariant: the producer broke a storage rule
//	}
//	for _, sr := range run.ScanResults(id) {
//	    fmt.Println(sr.Scanner.Name, len(sr.Summary.LicenseFindings))
//	}
//
// Narrowing keeps license findings of files that apply to the directory
// even when they lie above it, see [RootLicenseMatcher].
//
// Packages whose provenance could not be resolved get a single placeholder
// result of scanner [ProvenanceResolverScanner] carrying the resolution
// issue, so that the failure is reported where the package is.
//
// # Merging
//
// [Merge] combines runs made with equal configurations, for example the
// shards of a scan split over several jobs.
package scan
