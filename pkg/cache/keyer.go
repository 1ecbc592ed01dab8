package cache

import "slices"

// ReportKeyOpts are the options that shape a reconciled report.
type ReportKeyOpts struct {
	OmitExcluded bool     `json:"omit_excluded"`
	MinSeverity  string   `json:"min_severity"`
	Scanners     []string `json:"scanners,omitempty"`
	Format       string   `json:"format"`
}

// Keyer derives cache keys.
type Keyer interface {
	// ReportKey returns the key of the report built from inputs, given as
	// content hashes, with opts. The order of inputs matters, since runs
	// are merged in order.
	ReportKey(inputs []string, opts ReportKeyOpts) string
}

// DefaultKeyer hashes inputs and options.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ReportKey implements [Keyer].
func (DefaultKeyer) ReportKey(inputs []string, opts ReportKeyOpts) string {
	return hashKey("report", slices.Clone(inputs), opts)
}

// ScopedKeyer prefixes the keys of another keyer, for example with the tool
// version so that reports of different releases never collide:
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Version+":")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer returns a keyer that prepends prefix. A nil inner keyer
// means the default keyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ReportKey implements [Keyer].
func (k *ScopedKeyer) ReportKey(inputs []string, opts ReportKeyOpts) string {
	return k.prefix + k.inner.ReportKey(inputs, opts)
}
