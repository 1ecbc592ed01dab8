// Package result composes the analyzer output and a scanner run into one
// queryable result.
//
// A [Result] answers the questions reports ask about a repository: which
// projects and packages were found, which of them are excluded, what they
// depend on, what the scanners found and which issues were raised along the
// way.
//
// # Exclusions
//
// A project is excluded if its definition file, relative to the root of the
// analyzed repository, matches a path exclude of the repository
// configuration. A package is excluded unless some project that is not
// excluded depends on it in a scope that is not excluded.
//
//	res := &result.Result{Repository: repo, Analyzer: analyzer, Scanner: run}
//	for _, pkg := range res.Packages(true) {
//	    fmt.Println(pkg.ID, len(res.ScanResults(pkg.ID)))
//	}
package result
