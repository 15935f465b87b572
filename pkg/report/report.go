// Package report renders an examined Excavation to a directory of
// static HTML pages: one page per artifact plus an index page listing
// top-level artifacts and the keyword index (spec.md §3.3 C6, §4.6).
//
// Rendering never mutates the graph; it only reads the state left
// behind by the examination pipeline (pkg/examine).
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/aa-labs/autoarchaeologist/pkg/aaerr"
	"github.com/aa-labs/autoarchaeologist/pkg/artifact"
	"github.com/aa-labs/autoarchaeologist/pkg/bytesource"
	"github.com/aa-labs/autoarchaeologist/pkg/config"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
)

// Renderer writes the report for one Excavation.
type Renderer struct {
	exc *artifact.Excavation
	log zerolog.Logger
}

// NewRenderer constructs a Renderer over exc, logging through log.
func NewRenderer(exc *artifact.Excavation, log zerolog.Logger) *Renderer {
	return &Renderer{exc: exc, log: log}
}

type artifactPageData struct {
	Title           string
	Digest          string
	Size            string
	GeneratedAt     string
	Parents         []template.HTML
	Summary         string
	Descriptions    []string
	Comments        []string
	Children        []template.HTML
	Interpretations []interpretationView
	Hexdump         string
}

type interpretationView struct {
	Owner string
	HTML  template.HTML
}

type keywordEntry struct {
	Key     string
	Entries []template.HTML
}

type indexPageData struct {
	ID            string
	GeneratedAt   string
	ArtifactCount int
	TopLevel      []template.HTML
	Keywords      []keywordEntry
}

// WriteAll renders the index page and one page per artifact into
// cfg.HTMLDir (spec.md §6, §4.6). cfg.HTMLDir must be set.
func (r *Renderer) WriteAll() error {
	cfg := r.exc.Config()
	if cfg.HTMLDir == "" {
		return aaerr.NewIOFailure("", fmt.Errorf("report: HTMLDir not configured"))
	}
	if err := os.MkdirAll(cfg.HTMLDir, 0o755); err != nil {
		return aaerr.NewIOFailure(cfg.HTMLDir, err)
	}

	for _, a := range r.sortedArtifacts() {
		if err := r.writeArtifactPage(a); err != nil {
			return err
		}
	}
	if err := r.writeIndexPage(); err != nil {
		return err
	}
	r.log.Info().Int("artifacts", len(r.exc.Hashes())).Str("dir", cfg.HTMLDir).Msg("report written")
	return nil
}

// sortedArtifacts returns every artifact in the excavation in the
// stable by-name order spec.md §4.6 requires of emitted listings, so
// that report output is reproducible across runs despite Go's
// unspecified map iteration order.
func (r *Renderer) sortedArtifacts() []*artifact.Artifact {
	hashes := r.exc.Hashes()
	out := make([]*artifact.Artifact, 0, len(hashes))
	for _, a := range hashes {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

func (r *Renderer) writeArtifactPage(a *artifact.Artifact) error {
	cfg := r.exc.Config()
	path := filepath.Join(cfg.HTMLDir, r.exc.FilenameFor(a))
	f, err := os.Create(path)
	if err != nil {
		return aaerr.NewIOFailure(path, err)
	}
	defer f.Close()
	return r.RenderArtifact(f, a)
}

func (r *Renderer) writeIndexPage() error {
	cfg := r.exc.Config()
	path := filepath.Join(cfg.HTMLDir, "index.html")
	f, err := os.Create(path)
	if err != nil {
		return aaerr.NewIOFailure(path, err)
	}
	defer f.Close()
	return r.RenderIndex(f)
}

// RenderArtifact writes a's report page to w. Following the original's
// html_derivation (artifact.py:287-297): when the artifact carries
// registered interpretations, those are rendered in place of the
// fallback children listing and hexdump; the fallback is only shown
// for artifacts with no interpretation of their own.
func (r *Renderer) RenderArtifact(w *os.File, a *artifact.Artifact) error {
	data := artifactPageData{
		Title:        a.Name(),
		Digest:       a.Digest().String(),
		Size:         humanize.Bytes(uint64(a.Len())),
		GeneratedAt:  r.exc.Clock().Now().UTC().Format(time.RFC3339),
		Summary:      a.Summary(false, false, true),
		Descriptions: a.Descriptions(),
		Comments:     a.Comments(),
	}
	for _, p := range a.Parents() {
		if p.IsExcavation {
			data.Parents = append(data.Parents, template.HTML("(top-level artifact)"))
			continue
		}
		data.Parents = append(data.Parents, template.HTML(r.exc.HTMLLinkTo(p.Artifact)))
	}

	interpretations := a.Interpretations()
	for _, interp := range interpretations {
		var buf bytes.Buffer
		if err := interp.Render(&buf, a); err != nil {
			return aaerr.NewIOFailure(interp.Owner, err)
		}
		data.Interpretations = append(data.Interpretations, interpretationView{
			Owner: interp.Owner,
			HTML:  template.HTML(buf.String()),
		})
	}

	if len(interpretations) == 0 {
		for _, c := range a.Children() {
			data.Children = append(data.Children, template.HTML(r.exc.HTMLLinkTo(c)))
		}
		data.Hexdump = r.hexdump(a)
	}

	if err := artifactPageTemplate.Execute(w, data); err != nil {
		return aaerr.NewIOFailure(data.Title, err)
	}
	return nil
}

// RenderIndex writes the excavation's index page to w.
func (r *Renderer) RenderIndex(w *os.File) error {
	data := indexPageData{
		ID:            r.exc.ID().String(),
		GeneratedAt:   r.exc.Clock().Now().UTC().Format(time.RFC3339),
		ArtifactCount: len(r.exc.Hashes()),
	}
	for _, a := range r.exc.TopLevel() {
		data.TopLevel = append(data.TopLevel, template.HTML(r.exc.HTMLLinkTo(a)))
	}
	for _, key := range r.exc.IndexKeys() {
		artifacts := r.exc.Index(key)
		sort.Slice(artifacts, func(i, j int) bool {
			return artifacts[i].Name() < artifacts[j].Name()
		})
		entry := keywordEntry{Key: key}
		for _, a := range artifacts {
			entry.Entries = append(entry.Entries, template.HTML(r.exc.HTMLLinkTo(a)))
		}
		data.Keywords = append(data.Keywords, entry)
	}

	if err := indexPageTemplate.Execute(w, data); err != nil {
		return aaerr.NewIOFailure("index.html", err)
	}
	return nil
}

// hexdump renders a's content as a classic offset/hex/glyph dump,
// truncated to cfg.HexdumpLimit bytes total and using cfg.TypeCase to
// map bytes to display glyphs (spec.md §6). It handles both ByteSource
// variants: a Contiguous source dumps as one block, while a
// ScatterGather source dumps record by record, each preceded by a
// "Record #0x%x" header (spec.md §4.2), so that record boundaries
// remain visible in the rendered page.
func (r *Renderer) hexdump(a *artifact.Artifact) string {
	cfg := r.exc.Config()
	var buf bytes.Buffer

	if sg, ok := a.ByteSource().(bytesource.ScatterGather); ok {
		remaining := cfg.HexdumpLimit
		for i, rec := range sg.Records() {
			fmt.Fprintf(&buf, "Record #0x%x\n", i)
			if cfg.HexdumpLimit > 0 && remaining <= 0 {
				fmt.Fprintf(&buf, "... truncated at %s ...\n", humanize.Bytes(uint64(cfg.HexdumpLimit)))
				break
			}
			b := rec.Bytes()
			truncated := false
			if cfg.HexdumpLimit > 0 && len(b) > remaining {
				b = b[:remaining]
				truncated = true
			}
			writeHexRows(&buf, b, cfg)
			if cfg.HexdumpLimit > 0 {
				remaining -= len(b)
			}
			if truncated {
				fmt.Fprintf(&buf, "... truncated at %s ...\n", humanize.Bytes(uint64(cfg.HexdumpLimit)))
			}
		}
		return buf.String()
	}

	b := a.Bytes()
	truncated := false
	if cfg.HexdumpLimit > 0 && len(b) > cfg.HexdumpLimit {
		b = b[:cfg.HexdumpLimit]
		truncated = true
	}
	writeHexRows(&buf, b, cfg)
	if truncated {
		fmt.Fprintf(&buf, "... truncated at %s ...\n", humanize.Bytes(uint64(cfg.HexdumpLimit)))
	}
	return buf.String()
}

// writeHexRows writes the 16-bytes-per-line offset/hex/glyph rows for
// b to buf.
func writeHexRows(buf *bytes.Buffer, b []byte, cfg config.Config) {
	for off := 0; off < len(b); off += 16 {
		end := off + 16
		if end > len(b) {
			end = len(b)
		}
		row := b[off:end]

		fmt.Fprintf(buf, "%08x  ", off)
		for i := 0; i < 16; i++ {
			if i < len(row) {
				fmt.Fprintf(buf, "%02x ", row[i])
			} else {
				buf.WriteString("   ")
			}
			if i == 7 {
				buf.WriteByte(' ')
			}
		}
		buf.WriteString(" |")
		for _, c := range row {
			buf.WriteRune(cfg.TypeCase.Glyph(c))
		}
		buf.WriteString("|\n")
	}
}
