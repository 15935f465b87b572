// Package artifact implements the content-addressed, deduplicating DAG
// at the heart of AutoArchaeologist: Artifact nodes, their Excavation
// registry, and the coverage reconciliation that runs once an
// artifact's examination is complete (spec.md §3, §4.1–§4.3, §4.5).
package artifact

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aa-labs/autoarchaeologist/pkg/aaerr"
	"github.com/aa-labs/autoarchaeologist/pkg/bytesource"
	"github.com/aa-labs/autoarchaeologist/pkg/digest"
)

// RenderFunc emits a format-specific report section for one artifact.
// It must not mutate the graph (spec.md §4.6).
type RenderFunc func(w io.Writer, a *Artifact) error

// Interpretation pairs a RenderFunc with the name of the examiner that
// registered it.
type Interpretation struct {
	Owner  string
	Render RenderFunc
}

// LayoutEntry records that the byte range [Start, Stop) of an artifact
// gave rise to Child. Start and Stop are nil for whole-content
// derivations (spec.md §3.2).
type LayoutEntry struct {
	Start, Stop *int
	Child       *Artifact
}

// ParentRef is one entry of Artifact.Parents: either another Artifact,
// or the owning Excavation (for top-level artifacts).
type ParentRef struct {
	Artifact     *Artifact
	IsExcavation bool
}

// RecordExtractor implements the record-extraction seam supplementing
// the distilled spec with the original's Artifact.record() hook
// (SPEC_FULL.md §9). AutoArchaeologist ships no concrete extractor —
// the original's autoarchaeologist/record.py was not part of the
// retrieved reference set — only the pass-through.
type RecordExtractor func(a *Artifact, layout interface{}) (*Artifact, error)

// Artifact is a node in the excavation's DAG: a byte range plus
// derivation metadata, uniquely identified by its content digest.
type Artifact struct {
	digest digest.Digest
	bytes  bytesource.ByteSource

	parents  []parentNode
	children []*Artifact
	layout   []LayoutEntry

	named *string
	notes map[string]struct{}
	types map[string]struct{}

	descriptions    []string
	comments        []string
	interpretations []Interpretation

	taken      bool
	top        *Excavation
	isTopLevel bool

	// indexRepresentation memoises Summary(link=true, ident=true, ...).
	// Nothing invalidates it once set: per spec.md §9 this staleness
	// is explicitly deemed tolerable between examination and
	// rendering, and the original implementation never clears it
	// either.
	indexRepresentation *string
}

func newArtifact(up parentNode, dig digest.Digest, bs bytesource.ByteSource) *Artifact {
	a := &Artifact{
		digest: dig,
		bytes:  bs,
		notes:  map[string]struct{}{},
		types:  map[string]struct{}{},
		top:    up.excavation(),
	}
	a.addParent(up)
	a.top.addArtifact(a)
	return a
}

func (a *Artifact) addParent(up parentNode) {
	a.parents = append(a.parents, up)
	up.attachChild(a)
}

// Digest returns the artifact's content digest.
func (a *Artifact) Digest() digest.Digest { return a.digest }

// Len returns the length of the artifact's byte content.
func (a *Artifact) Len() int { return a.bytes.Len() }

// Bytes returns the artifact's logical byte content. See
// bytesource.ByteSource.Bytes for copy semantics.
func (a *Artifact) Bytes() []byte { return a.bytes.Bytes() }

// ByteSource exposes the underlying ByteSource, e.g. for hexdump
// rendering that must distinguish Contiguous from ScatterGather.
func (a *Artifact) ByteSource() bytesource.ByteSource { return a.bytes }

// Top returns the owning Excavation.
func (a *Artifact) Top() *Excavation { return a.top }

// IsTaken reports whether the artifact has been claimed via MarkTaken.
// examine.Driver marks every artifact taken before it offers it to the
// registered examiners.
func (a *Artifact) IsTaken() bool { return a.taken }

// MarkTaken claims the artifact. Idempotent.
func (a *Artifact) MarkTaken() { a.taken = true }

// Named returns the artifact's canonical name, if it has claimed one.
func (a *Artifact) Named() (string, bool) {
	if a.named == nil {
		return "", false
	}
	return *a.named, true
}

// Name returns the canonical display name: the claimed name, or the
// configured digest prefix, wrapped in the ⟦…⟧ brackets spec.md §6
// specifies.
func (a *Artifact) Name() string {
	if a.named != nil {
		return "⟦" + *a.named + "⟧"
	}
	return "⟦" + a.digest.Prefix(a.top.cfg.DigestPrefix) + "⟧"
}

// SetName claims name as the artifact's canonical name. If the
// artifact already bears a different name, or name is already claimed
// elsewhere, fallback=true demotes name to a note (registered in the
// index) instead of failing; fallback=false returns a DuplicateName
// error (spec.md §4.2).
func (a *Artifact) SetName(name string, fallback bool) error {
	if a.named != nil && *a.named == name {
		return nil
	}
	if a.named != nil {
		if !fallback {
			return aaerr.NewDuplicateName(*a.named, name)
		}
		a.AddNote(name)
		return nil
	}
	if _, taken := a.top.names[name]; taken {
		if !fallback {
			return aaerr.NewDuplicateName("", name)
		}
		a.AddNote(name)
		return nil
	}
	a.top.names[name] = struct{}{}
	a.named = &name
	a.top.addToIndex(name, a)
	return nil
}

// AddNote appends a free-form tag, also registering it in the
// excavation's global index.
func (a *Artifact) AddNote(note string) {
	a.notes[note] = struct{}{}
	a.top.addToIndex(note, a)
}

// HasNote reports whether note has been added to this artifact.
func (a *Artifact) HasNote(note string) bool {
	_, ok := a.notes[note]
	return ok
}

// AddType appends a type tag, also registering it in the excavation's
// global index.
func (a *Artifact) AddType(typ string) {
	a.types[typ] = struct{}{}
	a.top.addToIndex(typ, a)
}

// HasType reports whether typ has been added to this artifact.
func (a *Artifact) HasType(typ string) bool {
	_, ok := a.types[typ]
	return ok
}

// AddDescription appends a human-readable description line.
func (a *Artifact) AddDescription(desc string) {
	a.descriptions = append(a.descriptions, desc)
}

// AddComment appends a human-readable comment. Presence of any comment
// auto-adds the "Has Comment" note (spec.md §3.2).
func (a *Artifact) AddComment(comment string) {
	a.comments = append(a.comments, comment)
	a.AddNote("Has Comment")
}

// AddInterpretation registers a render callback contributed by owner.
func (a *Artifact) AddInterpretation(owner string, fn RenderFunc) {
	a.interpretations = append(a.interpretations, Interpretation{Owner: owner, Render: fn})
}

// Interpretations returns a copy of the registered interpretations, in
// registration order.
func (a *Artifact) Interpretations() []Interpretation {
	out := make([]Interpretation, len(a.interpretations))
	copy(out, a.interpretations)
	return out
}

// Descriptions returns a copy of the artifact's descriptions, in the
// order they were added.
func (a *Artifact) Descriptions() []string {
	out := make([]string, len(a.descriptions))
	copy(out, a.descriptions)
	return out
}

// Comments returns a copy of the artifact's comments, in the order
// they were added.
func (a *Artifact) Comments() []string {
	out := make([]string, len(a.comments))
	copy(out, a.comments)
	return out
}

// Children returns a copy of the artifact's children, in derivation
// order.
func (a *Artifact) Children() []*Artifact {
	out := make([]*Artifact, len(a.children))
	copy(out, a.children)
	return out
}

// Layout returns a copy of the artifact's layout entries, in the order
// they were recorded.
func (a *Artifact) Layout() []LayoutEntry {
	out := make([]LayoutEntry, len(a.layout))
	copy(out, a.layout)
	return out
}

// Less orders artifacts by canonical name, for the stable by-name
// ordering spec.md §4.6 requires of derivation listings and report
// index pages.
func (a *Artifact) Less(other *Artifact) bool {
	return a.Name() < other.Name()
}

// Parents returns the artifact's parents (other Artifacts, or the
// owning Excavation for top-level artifacts), sorted the way
// html_derivation in the original implementation sorts them: by name,
// with the Excavation pseudo-parent always sorting last.
func (a *Artifact) Parents() []ParentRef {
	out := make([]ParentRef, 0, len(a.parents))
	for _, p := range a.parents {
		if ap, ok := p.(*Artifact); ok {
			out = append(out, ParentRef{Artifact: ap})
		} else {
			out = append(out, ParentRef{IsExcavation: true})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsExcavation != out[j].IsExcavation {
			return out[j].IsExcavation
		}
		if out[i].IsExcavation {
			return false
		}
		return out[i].Artifact.Less(out[j].Artifact)
	})
	return out
}

// ExtractRecord delegates to extractor, the external record-extraction
// seam described in SPEC_FULL.md §9.
func (a *Artifact) ExtractRecord(extractor RecordExtractor, layout interface{}) (*Artifact, error) {
	if extractor == nil {
		return nil, aaerr.NewIOFailure("record-extractor", fmt.Errorf("no RecordExtractor configured"))
	}
	return extractor(a, layout)
}

// CreateFromBytes produces or looks up a derived artifact whose content
// is bits. It does not extend the receiver's layout (spec.md §4.2 mode
// 2).
func (a *Artifact) CreateFromBytes(bits []byte) (*Artifact, error) {
	if len(bits) == 0 {
		return nil, aaerr.NewInvalidSource()
	}
	bs, err := bytesource.NewContiguous(bits)
	if err != nil {
		return nil, err
	}
	dig := digest.Sum(bits)
	return a.lookupOrCreate(dig, bs, nil, nil)
}

// CreateFromRecords produces or looks up a derived artifact built as a
// ScatterGather over records. It does not extend the receiver's layout
// (spec.md §4.2 mode 1).
func (a *Artifact) CreateFromRecords(records []bytesource.ByteSource) (*Artifact, error) {
	if len(records) == 0 {
		return nil, aaerr.NewInvalidSource()
	}
	bs, err := bytesource.NewScatterGather(records)
	if err != nil {
		return nil, err
	}
	dig := digest.SumBytes(bs.Sum256())
	return a.lookupOrCreate(dig, bs, nil, nil)
}

// CreateRange produces or looks up a derived artifact covering
// [start, stop) of the receiver's own bytes (spec.md §4.2 mode 3). If
// start==0 and stop==a.Len(), it returns the receiver unchanged and
// does not extend its layout (testable property 2). Otherwise the
// range is appended to the receiver's layout.
func (a *Artifact) CreateRange(start, stop int) (*Artifact, error) {
	if stop <= start {
		return nil, aaerr.NewEmptyRange(start, stop)
	}
	if start < 0 || stop > a.bytes.Len() {
		return nil, aaerr.NewOutOfBounds(start, stop, a.bytes.Len())
	}
	if start == 0 && stop == a.bytes.Len() {
		return a, nil
	}
	sl, err := a.bytes.Slice(start, stop)
	if err != nil {
		return nil, err
	}
	dig := digest.SumBytes(sl.Sum256())
	lo, hi := start, stop
	return a.lookupOrCreate(dig, sl, &lo, &hi)
}

func (a *Artifact) lookupOrCreate(dig digest.Digest, bs bytesource.ByteSource, lo, hi *int) (*Artifact, error) {
	var child *Artifact
	if existing, ok := a.top.hashes[dig.String()]; ok {
		if !existing.hasParent(a) {
			existing.addParent(a)
		}
		child = existing
	} else {
		child = newArtifact(a, dig, bs)
	}
	if lo != nil || hi != nil {
		a.layout = append(a.layout, LayoutEntry{Start: lo, Stop: hi, Child: child})
	}
	return child, nil
}

// hasParent reports whether candidate is already among a's parents, so
// that re-deriving the same child from the same parent (e.g. two
// identical CreateRange calls) does not register it twice.
func (a *Artifact) hasParent(candidate parentNode) bool {
	for _, p := range a.parents {
		if p == candidate {
			return true
		}
	}
	return false
}

// Examined implements the CoverageReconciler (spec.md §4.5): once an
// artifact's examination is complete, synthesise child artifacts for
// every byte range not claimed by a concrete layout entry. Gaps are
// only synthesised when at least one concrete range exists; overlaps
// between layout entries never produce a negative gap, since the
// coverage cursor only ever advances (cursor = max(cursor,
// previous_stop), spec.md §4.5/§9).
func (a *Artifact) Examined() error {
	var concrete []LayoutEntry
	for _, l := range a.layout {
		if l.Start != nil && l.Stop != nil {
			concrete = append(concrete, l)
		}
	}
	if len(concrete) == 0 {
		return nil
	}
	sort.Slice(concrete, func(i, j int) bool {
		if *concrete[i].Start != *concrete[j].Start {
			return *concrete[i].Start < *concrete[j].Start
		}
		return *concrete[i].Stop < *concrete[j].Stop
	})

	var gaps [][2]int
	offset := 0
	for _, l := range concrete {
		if offset < *l.Start {
			gaps = append(gaps, [2]int{offset, *l.Start})
		}
		if *l.Stop > offset {
			offset = *l.Stop
		}
	}
	if offset != a.bytes.Len() {
		gaps = append(gaps, [2]int{offset, a.bytes.Len()})
	}
	for _, g := range gaps {
		if _, err := a.CreateRange(g[0], g[1]); err != nil {
			return err
		}
	}
	return nil
}

// NoteRef pairs a note string with the descendant artifact it was
// recorded on, as returned by IterNotes.
type NoteRef struct {
	Artifact *Artifact
	Note     string
}

// IterTypes returns this artifact's own type tags; if recursive, also
// the type tags of every descendant, each visited at most once even
// when the DAG shares children between multiple parents (testable
// property 6).
func (a *Artifact) IterTypes(recursive bool) []string {
	visited := map[*Artifact]bool{}
	var out []string
	var walk func(x *Artifact)
	walk = func(x *Artifact) {
		if visited[x] {
			return
		}
		visited[x] = true
		for t := range x.types {
			out = append(out, t)
		}
		if recursive {
			for _, c := range x.children {
				walk(c)
			}
		}
	}
	walk(a)
	return out
}

// IterNotes returns this artifact's own notes tagged with itself as
// owner; if recursive, also every descendant's notes tagged with that
// descendant, each descendant visited at most once.
func (a *Artifact) IterNotes(recursive bool) []NoteRef {
	visited := map[*Artifact]bool{}
	var out []NoteRef
	var walk func(x *Artifact)
	walk = func(x *Artifact) {
		if visited[x] {
			return
		}
		visited[x] = true
		for n := range x.notes {
			out = append(out, NoteRef{Artifact: x, Note: n})
		}
		if recursive {
			for _, c := range x.children {
				walk(c)
			}
		}
	}
	walk(a)
	return out
}

// Summary produces (and, when both link and ident are true, memoises)
// a one-line description: name, deduplicated recursive types,
// descriptions, and optionally up to 35 recursive notes (spec.md
// §4.2).
func (a *Artifact) Summary(link, ident, notes bool) string {
	if link && ident && a.indexRepresentation != nil {
		return *a.indexRepresentation
	}

	var nam string
	if ident {
		if link {
			nam = a.top.HTMLLinkTo(a) + " "
		} else {
			nam = a.Name() + " "
		}
	}

	var parts []string
	seen := map[string]bool{}
	for _, t := range a.IterTypes(true) {
		if !seen[t] {
			parts = append(parts, t)
			seen[t] = true
		}
	}
	if len(a.descriptions) > 0 {
		ds := append([]string{}, a.descriptions...)
		sort.Strings(ds)
		parts = append(parts, ds...)
	}
	if notes {
		noteSet := map[string]bool{}
		for _, nr := range a.IterNotes(true) {
			noteSet[nr.Note] = true
		}
		nn := make([]string, 0, len(noteSet))
		for n := range noteSet {
			nn = append(nn, n)
		}
		sort.Strings(nn)
		if len(nn) > 35 {
			parts = append(parts, nn[:35]...)
			parts = append(parts, "…")
		} else {
			parts = append(parts, nn...)
		}
	}

	s := nam + strings.Join(parts, ", ")
	if link && ident {
		a.indexRepresentation = &s
	}
	return s
}
