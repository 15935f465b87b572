package artifact

import (
	"sort"
	"strings"

	"github.com/aa-labs/autoarchaeologist/pkg/bytesource"
	"github.com/aa-labs/autoarchaeologist/pkg/config"
	"github.com/aa-labs/autoarchaeologist/pkg/digest"
	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	artifactsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "autoarchaeologist",
		Subsystem: "excavation",
		Name:      "artifacts_created_total",
		Help:      "Number of distinct artifacts (by digest) admitted into an excavation.",
	}, []string{"excavation_id"})
	artifactsLive = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "autoarchaeologist",
		Subsystem: "excavation",
		Name:      "artifacts_live",
		Help:      "Number of distinct artifacts currently held by an excavation.",
	}, []string{"excavation_id"})
)

// Examiner inspects one artifact per invocation, contributing names,
// notes, types, descriptions, comments, interpretations, or further
// derived artifacts (spec.md §3.3, §4.3). It lives in this package
// (rather than in pkg/examine, where the driver that invokes it does)
// so that Excavation can hold a slice of them without pkg/artifact
// importing pkg/examine, which would import pkg/artifact back.
type Examiner interface {
	Name() string
	Examine(a *Artifact) error
}

// Excavation is the registry of all artifacts discovered while
// examining one input: the content-addressed hash table, the name and
// keyword indexes, and the set of registered examiners (spec.md §3.3).
type Excavation struct {
	cfg   config.Config
	id    uuid.UUID
	clock clock.Clock

	hashes map[string]*Artifact
	names  map[string]struct{}
	index  map[string]map[*Artifact]struct{}

	// creationOrder is an append-only log of every artifact at the
	// moment it is first admitted, in admission order. Go map
	// iteration order over hashes is unspecified, so
	// examine.Driver cannot discover "artifacts created since last
	// look" by diffing map keys; it instead tracks a cursor into
	// this slice (spec.md §4.4's FIFO/registration-order guarantee).
	creationOrder []*Artifact

	examiners []Examiner
}

// NewExcavation creates an empty Excavation. cfg is resolved against
// config.DefaultConfig for any zero-valued field that has a default.
func NewExcavation(cfg config.Config) *Excavation {
	return &Excavation{
		cfg:    cfg.Resolve(),
		id:     uuid.New(),
		clock:  clock.New(),
		hashes: map[string]*Artifact{},
		names:  map[string]struct{}{},
		index:  map[string]map[*Artifact]struct{}{},
	}
}

// Config returns the excavation's resolved configuration.
func (e *Excavation) Config() config.Config { return e.cfg }

// ID returns the excavation's run identifier.
func (e *Excavation) ID() uuid.UUID { return e.id }

// Clock returns the excavation's time source, used by report.Renderer
// to stamp generated pages. NewExcavation always installs the real
// wall clock (clock.New()); there is no way to substitute another one,
// so page timestamps vary between runs.
func (e *Excavation) Clock() clock.Clock { return e.clock }

// RegisterExaminer appends ex to the set invoked by examine.Driver, in
// registration order (spec.md §4.4).
func (e *Excavation) RegisterExaminer(ex Examiner) {
	e.examiners = append(e.examiners, ex)
}

// Examiners returns the registered examiners, in registration order.
func (e *Excavation) Examiners() []Examiner {
	out := make([]Examiner, len(e.examiners))
	copy(out, e.examiners)
	return out
}

// CreationLen returns the number of artifacts ever admitted.
func (e *Excavation) CreationLen() int { return len(e.creationOrder) }

// CreationAt returns the artifact admitted at position i, in
// admission order. Panics if i is out of range, matching slice
// indexing semantics; callers are expected to bound i by CreationLen.
func (e *Excavation) CreationAt(i int) *Artifact { return e.creationOrder[i] }

// Hashes returns the excavation's digest→artifact table. The returned
// map is the live internal table and must not be mutated by callers;
// it is exposed for read-only lookup and iteration in tests and
// reporting.
func (e *Excavation) Hashes() map[string]*Artifact { return e.hashes }

// TopLevel returns the artifacts that count the Excavation itself
// among their parents, i.e. the roots handed to Ingest/IngestRecords,
// in creation order.
func (e *Excavation) TopLevel() []*Artifact {
	var out []*Artifact
	for _, a := range e.creationOrder {
		if a.isTopLevel {
			out = append(out, a)
		}
	}
	return out
}

// Index returns the set of artifacts registered under key (via
// SetName, AddNote, or AddType), or nil if key was never registered.
func (e *Excavation) Index(key string) []*Artifact {
	set, ok := e.index[key]
	if !ok {
		return nil
	}
	out := make([]*Artifact, 0, len(set))
	for a := range set {
		out = append(out, a)
	}
	return out
}

// IndexKeys returns every key registered in the excavation's keyword
// index, sorted.
func (e *Excavation) IndexKeys() []string {
	out := make([]string, 0, len(e.index))
	for k := range e.index {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (e *Excavation) addToIndex(key string, a *Artifact) {
	set, ok := e.index[key]
	if !ok {
		set = map[*Artifact]struct{}{}
		e.index[key] = set
	}
	set[a] = struct{}{}
}

// addArtifact admits a newly constructed artifact into the hash table
// and creation log. It is called exactly once per artifact, from
// newArtifact; re-parenting an existing artifact goes through
// addParent instead and never calls this again.
func (e *Excavation) addArtifact(a *Artifact) {
	e.hashes[a.digest.String()] = a
	e.creationOrder = append(e.creationOrder, a)
	if _, ok := a.parents[0].(*Excavation); ok {
		a.isTopLevel = true
	}
	id := e.id.String()
	artifactsCreated.WithLabelValues(id).Inc()
	artifactsLive.WithLabelValues(id).Set(float64(len(e.hashes)))
}

// Ingest admits bits as a top-level artifact, deduplicating against
// any existing artifact with the same content digest (testable
// property 3).
func (e *Excavation) Ingest(bits []byte) (*Artifact, error) {
	bs, err := bytesource.NewContiguous(bits)
	if err != nil {
		return nil, err
	}
	dig := digest.Sum(bits)
	return e.ingest(dig, bs)
}

// IngestRecords admits a ScatterGather of records as a top-level
// artifact, deduplicating against any existing artifact with the same
// content digest.
func (e *Excavation) IngestRecords(records []bytesource.ByteSource) (*Artifact, error) {
	bs, err := bytesource.NewScatterGather(records)
	if err != nil {
		return nil, err
	}
	dig := digest.SumBytes(bs.Sum256())
	return e.ingest(dig, bs)
}

// ingest looks up dig in the hash table; if found, it re-parents the
// existing artifact onto the excavation itself so that content
// reachable only as some other artifact's child becomes a top-level
// root too once it is also ingested directly. Otherwise it admits a
// brand new top-level artifact.
func (e *Excavation) ingest(dig digest.Digest, bs bytesource.ByteSource) (*Artifact, error) {
	if existing, ok := e.hashes[dig.String()]; ok {
		if !existing.isTopLevel {
			existing.addParent(e)
			existing.isTopLevel = true
		}
		return existing, nil
	}
	return newArtifact(e, dig, bs), nil
}

// HTMLLinkTo renders an anchor tag pointing at a's report page,
// honouring cfg.LinkPrefix (spec.md §6).
func (e *Excavation) HTMLLinkTo(a *Artifact) string {
	return `<a href="` + e.cfg.LinkPrefix + e.FilenameFor(a) + `">` + a.Name() + `</a>`
}

// FilenameFor returns the report filename for a, derived from its
// digest so that it is stable across runs and collision-free
// regardless of display name (spec.md §4.6).
func (e *Excavation) FilenameFor(a *Artifact) string {
	return sanitizeFilename(a.digest.Prefix(16)) + ".html"
}

func sanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
