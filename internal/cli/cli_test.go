package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/scantower/pkg/core/dependency"
	"github.com/matzehuels/scantower/pkg/core/model"
	"github.com/matzehuels/scantower/pkg/core/result"
	"github.com/matzehuels/scantower/pkg/core/scan"
	"github.com/matzehuels/scantower/pkg/errors"
	scio "github.com/matzehuels/scantower/pkg/io"
)

var (
	idApp   = model.MustParseIdentifier("Maven:com.example:app:1.0")
	idLib   = model.MustParseIdentifier("Maven:com.example:lib:2.0")
	idUtil  = model.MustParseIdentifier("Maven:com.example:util:1.0")
	idJunit = model.MustParseIdentifier("Maven:junit:junit:4.13")
)

// writeResult writes a result file with one project, three packages and a
// scanner run for the project, and returns its path.
func writeResult(t *testing.T, dir, name string) string {
	t.Helper()
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	vcs := model.VcsInfo{Type: model.VcsGit, URL: "https://github.com/example/app.git", Revision: "main"}
	prov := model.RepositoryProvenance{VcsInfo: vcs, ResolvedRevision: "0123abcd"}

	run, err := scan.NewScannerRun(scan.RunData{
		StartTime:   t0,
		EndTime:     t0.Add(time.Minute),
		Provenances: []scan.ProvenanceResolutionResult{{ID: idApp, PackageProvenance: prov}},
		ScanResults: []scan.ScanResult{{
			Provenance: prov,
			Scanner:    scan.ScannerDetails{Name: "ScanCode", Version: "32.1.0"},
			Summary: scan.ScanSummary{StartTime: t0, EndTime: t0, FileCount: 1, LicenseFindings: []scan.LicenseFinding{
				{License: "MIT", Location: scan.TextLocation{Path: "LICENSE", StartLine: 1, EndLine: 20}},
			}},
		}},
		Scanners: map[model.Identifier][]string{idApp: {"ScanCode"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	graph := dependency.NewGraphBuilder().
		AddRoot(idApp, "compile", idLib).
		AddDependency(idLib, idUtil).
		AddRoot(idApp, "test", idJunit).
		Build()
	res := &result.Result{
		Repository: result.Repository{Vcs: vcs, VcsProcessed: vcs},
		Analyzer: &result.AnalyzerRun{
			StartTime: t0,
			EndTime:   t0,
			Result: result.AnalyzerResult{
				Projects: []model.Project{{ID: idApp, DefinitionFilePath: "pom.xml", ScopeNames: []string{"compile", "test"}}},
				Packages: []model.Package{{ID: idLib}, {ID: idUtil}, {ID: idJunit}},
				Issues: map[model.Identifier][]model.Issue{
					idLib: {{Timestamp: t0, Source: "Maven", Message: "no pom", Severity: model.SeverityWarning}},
				},
				DependencyGraphs: map[string]*dependency.DependencyGraph{"Maven": graph},
			},
		},
		Scanner: run,
	}
	path := filepath.Join(dir, name)
	if err := scio.ExportFile(res, path); err != nil {
		t.Fatal(err)
	}
	return path
}

// writeConfig writes a config file that keeps the cache in dir.
func writeConfig(t *testing.T, dir, extra string) string {
	t.Helper()
	path := filepath.Join(dir, "scantower.toml")
	content := "[cache]\ndir = '" + filepath.Join(dir, "cache") + "'\n" + extra
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// run executes the CLI with args and returns what commands wrote to their
// output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestReconcileCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "[[excludes.scopes]]\npattern = 'test'\nreason = 'TEST_DEPENDENCY_OF'\n")
	in := writeResult(t, dir, "result.yml")

	out, err := run(t, "--config", cfg, "reconcile", in)
	if err != nil {
		t.Fatalf("reconcile error = %v", err)
	}
	for _, want := range []string{`"id": "Maven:com.example:lib:2.0"`, `"detected_licenses": [`, `"MIT"`} {
		if !strings.Contains(out, want) {
			t.Errorf("report lacks %s:\n%s", want, out)
		}
	}

	report := filepath.Join(dir, "report.yml")
	if _, err := run(t, "--config", cfg, "reconcile", in, "-o", report, "--omit-excluded"); err != nil {
		t.Fatalf("reconcile -o error = %v", err)
	}
	data, err := os.ReadFile(report)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "packages:") || strings.Contains(string(data), "junit") {
		t.Errorf("yaml report = %s", data)
	}

	if _, err := run(t, "--config", cfg, "reconcile", in, "--format", "svg"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("reconcile --format svg error = %v, want %v", err, errors.ErrCodeInvalidFormat)
	}
	if _, err := run(t, "--config", cfg, "reconcile", filepath.Join(dir, "missing.yml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("reconcile missing error = %v, want %v", err, errors.ErrCodeFileNotFound)
	}
}

func TestReconcileUsesConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "[output]\nformat = 'yaml'\nmin_severity = 'ERROR'\n\n[scanner]\nignore_patterns = ['LICENSE']\n")
	in := writeResult(t, dir, "result.json")

	out, err := run(t, "--config", cfg, "reconcile", in)
	if err != nil {
		t.Fatalf("reconcile error = %v", err)
	}
	if !strings.HasPrefix(out, "repository:") {
		t.Errorf("report is not yaml:\n%s", out)
	}
	if strings.Contains(out, "MIT") {
		t.Errorf("ignored LICENSE finding reported:\n%s", out)
	}
	if strings.Contains(out, "no pom") {
		t.Errorf("WARNING issue reported with min_severity ERROR:\n%s", out)
	}

	out, err = run(t, "--config", cfg, "reconcile", in, "--format", "json", "--min-severity", "hint")
	if err != nil {
		t.Fatalf("reconcile error = %v", err)
	}
	if !strings.Contains(out, "no pom") || !strings.HasPrefix(out, "{") {
		t.Errorf("flags did not override config:\n%s", out)
	}
}

func TestReconcileScannerFilter(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "[output]\nscanners = ['licensee']\n")
	in := writeResult(t, dir, "result.json")

	out, err := run(t, "--config", cfg, "reconcile", in)
	if err != nil {
		t.Fatalf("reconcile error = %v", err)
	}
	if strings.Contains(out, "MIT") {
		t.Errorf("findings of a filtered scanner reported:\n%s", out)
	}

	out, err = run(t, "--config", cfg, "reconcile", in, "--scanner", "ScanCode@>=32, <33")
	if err != nil {
		t.Fatalf("reconcile --scanner error = %v", err)
	}
	if !strings.Contains(out, "MIT") {
		t.Errorf("--scanner did not override config:\n%s", out)
	}

	out, err = run(t, "--config", cfg, "reconcile", in, "--scanner", "ScanCode@<32")
	if err != nil {
		t.Fatalf("reconcile --scanner error = %v", err)
	}
	if strings.Contains(out, "MIT") {
		t.Errorf("findings outside the version range reported:\n%s", out)
	}

	if _, err := run(t, "--config", cfg, "reconcile", in, "--scanner", "ScanCode@>=x"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("reconcile --scanner ScanCode@>=x error = %v, want %v", err, errors.ErrCodeInvalidInput)
	}
}

func TestMergeCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "")
	a := writeResult(t, dir, "a.yml")
	b := writeResult(t, dir, "b.json")

	if _, err := run(t, "--config", cfg, "merge", a, b); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("merge without --output error = %v, want %v", err, errors.ErrCodeInvalidInput)
	}
	merged := filepath.Join(dir, "merged.yml")
	if _, err := run(t, "--config", cfg, "merge", a, b, "-o", merged); err != nil {
		t.Fatalf("merge error = %v", err)
	}
	res, err := scio.ImportFile(merged)
	if err != nil {
		t.Fatalf("ImportFile(merged) error = %v", err)
	}
	if got := res.ScanResults(idApp); len(got) != 1 {
		t.Errorf("ScanResults(app) = %d results, want 1", len(got))
	}
}

func TestDepsCommands(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "")
	in := writeResult(t, dir, "result.yml")

	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{
			name: "list all",
			args: []string{"deps", "list", in},
			want: []string{idApp.String(), "  " + idLib.String(), "  " + idUtil.String(), "  " + idJunit.String()},
		},
		{
			name:    "list package",
			args:    []string{"deps", "list", in, idLib.String(), "--max-depth", "1"},
			want:    []string{idUtil.String()},
			notWant: []string{idJunit.String()},
		},
		{
			name: "paths",
			args: []string{"deps", "paths", in, idApp.String()},
			want: []string{"compile", idLib.String() + " → " + idUtil.String(), "test"},
		},
		{
			name: "depth",
			args: []string{"deps", "depth", in, idApp.String()},
			want: []string{"compile 2", "test 1"},
		},
		{
			name: "issues",
			args: []string{"deps", "issues", in},
			want: []string{"WARNING", idLib.String(), "[Maven] no pom"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append([]string{"--config", cfg}, tt.args...)...)
			if err != nil {
				t.Fatalf("%v error = %v", tt.args, err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output lacks %q:\n%s", w, out)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("output contains %q:\n%s", w, out)
				}
			}
		})
	}

	if _, err := run(t, "--config", cfg, "deps", "depth", in, idLib.String()); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("deps depth of a package error = %v, want %v", err, errors.ErrCodeNotFound)
	}
	if _, err := run(t, "--config", cfg, "deps", "issues", in, "--min-severity", "loud"); err == nil {
		t.Error("deps issues with a bad severity succeeded")
	}
}

func TestIDCommand(t *testing.T) {
	if _, err := run(t, "id", "Maven:org.apache.commons:commons-lang3:3.14.0", "--org", "apache"); err != nil {
		t.Errorf("id error = %v", err)
	}
	if _, err := run(t, "id", "a:b:c:d:e"); !errors.Is(err, errors.ErrCodeInvalidIdentifier) {
		t.Errorf("id error = %v, want %v", err, errors.ErrCodeInvalidIdentifier)
	}
}

func TestCacheCommands(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "")
	in := writeResult(t, dir, "result.yml")

	out, err := run(t, "--config", cfg, "cache", "path")
	if err != nil {
		t.Fatalf("cache path error = %v", err)
	}
	if got := strings.TrimSpace(out); got != filepath.Join(dir, "cache") {
		t.Errorf("cache path = %q, want %q", got, filepath.Join(dir, "cache"))
	}

	if _, err := run(t, "--config", cfg, "reconcile", in); err != nil {
		t.Fatal(err)
	}
	entries, _ := filepath.Glob(filepath.Join(dir, "cache", "*", "*.json"))
	if len(entries) != 1 {
		t.Fatalf("cache entries = %d, want 1", len(entries))
	}
	if _, err := run(t, "--config", cfg, "cache", "clear"); err != nil {
		t.Fatalf("cache clear error = %v", err)
	}
	entries, _ = filepath.Glob(filepath.Join(dir, "cache", "*", "*.json"))
	if len(entries) != 0 {
		t.Errorf("cache entries after clear = %d, want 0", len(entries))
	}

	if _, err := run(t, "--config", cfg, "reconcile", in, "--no-cache"); err != nil {
		t.Fatal(err)
	}
	entries, _ = filepath.Glob(filepath.Join(dir, "cache", "*", "*.json"))
	if len(entries) != 0 {
		t.Errorf("--no-cache wrote %d entries", len(entries))
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		out, err := run(t, "completion", shell)
		if err != nil {
			t.Errorf("completion %s error = %v", shell, err)
		}
		if !strings.Contains(out, "scantower") {
			t.Errorf("completion %s does not mention scantower", shell)
		}
	}
	if _, err := run(t, "completion", "tcsh"); err == nil {
		t.Error("completion tcsh succeeded")
	}
}
