// Package model defines the value types shared by the analyzer and scanner
// layers of scantower.
//
// # Identifiers
//
// An [Identifier] is the canonical key of a component: a 4-tuple of
// ecosystem type, namespace, name and version. It has a string form
// ("type:namespace:name:version"), a filesystem-safe path form and a
// package URL form:
//
//	id := model.MustParseIdentifier("Maven:org.apache:commons-lang3:3.12.0")
//	id.ToPurl()          // pkg:maven/org.apache/commons-lang3@3.12.0
//	id.ToPath("", "")    // Maven/org.apache/commons-lang3/3.12.0
//
// Identifiers are ordered by [CompareIdentifiers], which compares versions
// with [CompareAlphaNumeric] so that "1.10" sorts after "1.9".
//
// # Provenance
//
// A [Provenance] tells where scanned source code came from. It is a closed
// set of three value types: [UnknownProvenance], [ArtifactProvenance] and
// [RepositoryProvenance]. Code switching on a provenance handles all three.
//
// # Issues
//
// Problems that concern a single component are recorded as [Issue] values
// rather than returned as errors, so that one broken package never aborts
// processing of the others.
package model
