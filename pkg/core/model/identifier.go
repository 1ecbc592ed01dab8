package model

import (
	"cmp"
	"net/url"
	"regexp"
	"strings"

	"github.com/package-url/packageurl-go"

	"github.com/matzehuels/scantower/pkg/errors"
)

// identifierSeparator delimits the four components in the string form.
const identifierSeparator = ":"

// Defaults for [Identifier.ToPath].
const (
	DefaultPathSeparator  = "/"
	DefaultPathEmptyValue = "unknown"
)

// Identifier is the canonical key of a component: the ecosystem type (as
// named by the package manager that found it), an optional namespace, the
// name and the version.
//
// Identifiers are plain values. They are compared with ==, used as map keys
// and ordered with [CompareIdentifiers]. None of the fields may contain ':'
// since that would make the string form ambiguous; use [NewIdentifier] or
// [ParseIdentifier] to get that check.
type Identifier struct {
	Type      string
	Namespace string
	Name      string
	Version   string
}

// EmptyIdentifier has all four components empty.
var EmptyIdentifier = Identifier{}

// NewIdentifier builds an identifier from its components. A ':' inside any
// component is a precondition violation reported as ErrCodeInvalidIdentifier.
func NewIdentifier(typ, namespace, name, version string) (Identifier, error) {
	id := Identifier{Type: typ, Namespace: namespace, Name: name, Version: version}
	if err := id.Validate(); err != nil {
		return EmptyIdentifier, err
	}
	return id, nil
}

// ParseIdentifier parses the "type:namespace:name:version" form. Missing
// trailing components default to the empty string, so "npm::lodash" yields
// an identifier without a version.
func ParseIdentifier(s string) (Identifier, error) {
	parts := strings.SplitN(s, identifierSeparator, 4)
	for len(parts) < 4 {
		parts = append(parts, "")
	}
	return NewIdentifier(parts[0], parts[1], parts[2], parts[3])
}

// MustParseIdentifier is like [ParseIdentifier] but panics on error. It is
// meant for literals in tests and package-level variables.
func MustParseIdentifier(s string) Identifier {
	id, err := ParseIdentifier(s)
	if err != nil {
		panic(err)
	}
	return id
}

// Validate reports whether any component contains the separator.
func (id Identifier) Validate() error {
	for _, c := range id.components() {
		if strings.Contains(c, identifierSeparator) {
			return errors.New(errors.ErrCodeInvalidIdentifier,
				"identifier component %q must not contain %q", c, identifierSeparator)
		}
	}
	return nil
}

func (id Identifier) components() [4]string {
	return [4]string{id.Type, id.Namespace, id.Name, id.Version}
}

// IsEmpty reports whether all components are empty.
func (id Identifier) IsEmpty() bool { return id == EmptyIdentifier }

// ToCoordinates returns the canonical "type:namespace:name:version" string.
// Each component is trimmed and stripped of control characters.
func (id Identifier) ToCoordinates() string {
	c := id.components()
	out := make([]string, len(c))
	for i, s := range c {
		out[i] = stripControl(strings.TrimSpace(s))
	}
	return strings.Join(out, identifierSeparator)
}

// String returns the coordinates.
func (id Identifier) String() string { return id.ToCoordinates() }

// MarshalText encodes the identifier as its coordinates so it can be used as
// a JSON or YAML map key.
func (id Identifier) MarshalText() ([]byte, error) {
	return []byte(id.ToCoordinates()), nil
}

// UnmarshalText decodes coordinates produced by MarshalText.
func (id *Identifier) UnmarshalText(b []byte) error {
	parsed, err := ParseIdentifier(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r < ' ' {
			return -1
		}
		return r
	}, s)
}

// ToPath joins the components with separator, substituting emptyValue for
// blank components and encoding the rest so they are safe as file names.
// Empty arguments select [DefaultPathSeparator] and [DefaultPathEmptyValue].
func (id Identifier) ToPath(separator, emptyValue string) string {
	if separator == "" {
		separator = DefaultPathSeparator
	}
	if emptyValue == "" {
		emptyValue = DefaultPathEmptyValue
	}
	c := id.components()
	out := make([]string, len(c))
	for i, s := range c {
		if strings.TrimSpace(s) == "" {
			out[i] = emptyValue
		} else {
			out[i] = fileSystemEncode(s)
		}
	}
	return strings.Join(out, separator)
}

// maxFileNameLength is the common limit for a single path segment.
const maxFileNameLength = 255

var edgeDots = regexp.MustCompile(`(^\.|\.$)`)

func fileSystemEncode(s string) string {
	enc := url.QueryEscape(s)
	enc = strings.NewReplacer("+", "%20", "*", "%2A", "%7E", "~").Replace(enc)
	enc = edgeDots.ReplaceAllString(enc, "%2E")
	if len(enc) > maxFileNameLength {
		enc = enc[:maxFileNameLength]
	}
	return enc
}

// IsFromOrg reports whether the namespace indicates ownership by one of the
// given organizations. The check is a heuristic that follows each
// ecosystem's naming conventions: "@org" scopes for npm-like package
// managers and reverse domain names for Maven-like ones.
func (id Identifier) IsFromOrg(names ...string) bool {
	ns := strings.ToLower(id.Namespace)
	typ := strings.ToLower(id.Type)
	for _, name := range names {
		org := strings.ToLower(name)
		if org == "" {
			continue
		}
		switch {
		case npmLikeTypes[typ]:
			if ns == "@"+org {
				return true
			}
		case mavenLikeTypes[typ]:
			re := regexp.MustCompile(`^(com|io|net|org)\.` + regexp.QuoteMeta(org) + `(\..+)?$`)
			if re.MatchString(ns) {
				return true
			}
		default:
			if ns == org {
				return true
			}
		}
	}
	return false
}

var npmLikeTypes = map[string]bool{"npm": true, "pnpm": true, "yarn": true, "yarn2": true, "bower": true}

var mavenLikeTypes = map[string]bool{"maven": true, "gradle": true, "sbt": true, "ivy": true}

// purlTypes maps lower-cased package manager types to package URL types.
// Ecosystems missing from the table use "generic".
var purlTypes = map[string]string{
	"bower":     "bower",
	"bundler":   "gem",
	"gem":       "gem",
	"cargo":     "cargo",
	"crate":     "cargo",
	"cocoapods": "cocoapods",
	"pod":       "cocoapods",
	"composer":  "composer",
	"conan":     "conan",
	"conda":     "conda",
	"cran":      "cran",
	"deb":       "deb",
	"debian":    "deb",
	"docker":    "docker",
	"dep":       "golang",
	"glide":     "golang",
	"godep":     "golang",
	"gomod":     "golang",
	"go":        "golang",
	"golang":    "golang",
	"dotnet":    "nuget",
	"nuget":     "nuget",
	"github":    "github",
	"gradle":    "maven",
	"ivy":       "maven",
	"maven":     "maven",
	"sbt":       "maven",
	"hackage":   "hackage",
	"stack":     "hackage",
	"hex":       "hex",
	"mix":       "hex",
	"npm":       "npm",
	"pnpm":      "npm",
	"yarn":      "npm",
	"yarn2":     "npm",
	"pdm":       "pypi",
	"pip":       "pypi",
	"pipenv":    "pypi",
	"poetry":    "pypi",
	"pypi":      "pypi",
	"pub":       "pub",
	"rpm":       "rpm",
	"spm":       "swift",
	"swift":     "swift",
}

// PurlType returns the package URL type for a package manager type.
func PurlType(typ string) string {
	if t, ok := purlTypes[strings.ToLower(typ)]; ok {
		return t
	}
	return "generic"
}

// ToPurl renders the identifier as a package URL, or "" for the empty
// identifier.
func (id Identifier) ToPurl() string {
	if id.IsEmpty() {
		return ""
	}
	return packageurl.NewPackageURL(PurlType(id.Type), id.Namespace, id.Name, id.Version, nil, "").ToString()
}

// CompareIdentifiers orders identifiers by type, namespace and name, then by
// version using [CompareAlphaNumeric].
func CompareIdentifiers(a, b Identifier) int {
	if c := cmp.Compare(a.Type, b.Type); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Namespace, b.Namespace); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return CompareAlphaNumeric(a.Version, b.Version)
}
