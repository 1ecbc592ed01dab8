// Package io reads and writes result files in JSON and YAML.
//
// # Overview
//
// A result file holds everything a [result.Result] is made of: the analyzed
// repository with its configuration, the analyzer run and the stored data of
// the scanner run. Reconciled scan results are never written; they are
// derived again after reading.
//
// The format is chosen by file extension: ".json" for JSON, ".yml" or
// ".yaml" for YAML.
//
// # Document Layout
//
//	repository:
//	  vcs: {type: Git, url: https://github.com/example/app.git, revision: main}
//	  config:
//	    excludes:
//	      paths: [{pattern: "test/**", reason: TEST_OF}]
//	analyzer:
//	  result:
//	    projects: [...]
//	    packages: [...]
//	    dependency_graphs: {Maven: {...}}
//	scanner:
//	  config: {ignore_patterns: ["**/*.min.js"]}
//	  provenances:
//	    - id: "NPM::left-pad:1.3.0"
//	      package_provenance:
//	        source_artifact: {url: https://registry.npmjs.org/..., hash: {...}}
//	  scan_results:
//	    - provenance: {vcs_info: {...}, resolved_revision: 0123abcd}
//	      scanner: {name: ScanCode, version: 32.1.0}
//	      summary: {...}
//	  scanners:
//	    "NPM::left-pad:1.3.0": [ScanCode]
//
// # Provenance Envelopes
//
// Provenances are written as an object with the fields of the variant:
// source_artifact for artifacts, vcs_info and resolved_revision for
// repositories, and nothing for the unknown provenance. An envelope with
// both source_artifact and vcs_info is rejected.
//
// # Validation
//
// [ReadResult] and [ImportFile] validate what they read exactly like data
// built in memory, so a file written by a buggy producer fails to load with
// the code of the broken rule instead of yielding wrong results later.
// Unknown fields are rejected.
//
// # Output Stability
//
// [WriteResult] writes collections in canonical order. Writing the same
// result twice, or writing a result that was read back, gives byte-identical
// output.
package io
