// Package pkg provides the core libraries of Scantower.
//
// # Overview
//
// Scantower combines the output of a dependency analyzer with the output of
// source code scanners. Analyzers report projects, packages and their
// dependency graphs; scanners report licenses and copyrights per source tree.
// Scantower maps every finding back onto the packages whose source code it
// was found in. The pkg directory is organized into these areas:
//
//  1. [core] - Domain model (identifiers, provenances, dependency graphs,
//     scanner runs and the composed result)
//  2. [io] - Reading and writing result files in JSON and YAML
//  3. [pipeline] - Orchestration (load → reconcile → report)
//  4. [cache] and [observability] - Report cache and pipeline hooks
//  5. [errors] - Error codes shared by all packages
//
// # Architecture
//
// The typical data flow through Scantower:
//
//	result file(s)
//	     ↓
//	[io] package (decode and validate)
//	     ↓
//	[core/result] package (projects, packages, graphs, scanner run)
//	     ↓
//	[core/scan] package (reconcile scan results per package)
//	     ↓
//	[pipeline] package (report, cached)
//	     ↓
//	JSON/YAML report
//
// # Quick Start
//
// Read a result file and list what was found for a package:
//
//	import (
//	    "github.com/matzehuels/scantower/pkg/core/model"
//	    scio "github.com/matzehuels/scantower/pkg/io"
//	)
//
//	res, err := scio.ImportFile("scan-result.yml")
//	if err != nil {
//	    return err
//	}
//	id := model.MustParseIdentifier("NPM::left-pad:1.3.0")
//	for _, sr := range res.ScanResults(id) {
//	    fmt.Println(sr.Scanner.Name, sr.Summary.LicenseFindings)
//	}
//
// # Main Packages
//
// ## Core Domain Logic
//
// [core/model] - Identifiers, VCS info, provenances, issues and excludes.
//
// [core/dependency] - Dependency graphs shared by many projects, and the
// navigators that answer dependency queries over graphs and trees.
//
// [core/dag] - The adjacency-list graph backing compact dependency graphs.
//
// [core/scan] - Provenance resolution results, scan summaries and the
// scanner run that reconciles stored scan results per package.
//
// [core/result] - The composed result of one repository with its queries.
//
// ## Infrastructure
//
// [cache] - Report cache on the local filesystem, keyed by input hashes.
//
// [observability] - Hooks for pipeline stages and cache events.
//
// [pipeline] - Loads result files, applies overrides and builds reports.
//
// [core]: github.com/matzehuels/scantower/pkg/core
// [core/model]: github.com/matzehuels/scantower/pkg/core/model
// [core/dependency]: github.com/matzehuels/scantower/pkg/core/dependency
// [core/dag]: github.com/matzehuels/scantower/pkg/core/dag
// [core/scan]: github.com/matzehuels/scantower/pkg/core/scan
// [core/result]: github.com/matzehuels/scantower/pkg/core/result
// [io]: github.com/matzehuels/scantower/pkg/io
// [pipeline]: github.com/matzehuels/scantower/pkg/pipeline
// [cache]: github.com/matzehuels/scantower/pkg/cache
// [observability]: github.com/matzehuels/scantower/pkg/observability
// [errors]: github.com/matzehuels/scantower/pkg/errors
package pkg
