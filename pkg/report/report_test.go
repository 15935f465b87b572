package report_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aa-labs/autoarchaeologist/pkg/artifact"
	"github.com/aa-labs/autoarchaeologist/pkg/config"
	"github.com/aa-labs/autoarchaeologist/pkg/report"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestWriteAllProducesIndexAndArtifactPages(t *testing.T) {
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.HTMLDir = dir
	exc := artifact.NewExcavation(cfg)

	root, err := exc.Ingest([]byte("hello, report!"))
	require.NoError(t, err)
	require.NoError(t, root.SetName("greeting", false))
	root.AddDescription("a friendly greeting")
	root.AddComment("looks fine")
	root.AddType("Text")

	child, err := root.CreateRange(0, 5)
	require.NoError(t, err)
	child.AddNote("prefix")

	r := report.NewRenderer(exc, zerolog.Nop())
	require.NoError(t, r.WriteAll())

	indexBytes, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	require.Contains(t, string(indexBytes), exc.ID().String())
	require.Contains(t, string(indexBytes), "greeting")

	rootPage, err := os.ReadFile(filepath.Join(dir, exc.FilenameFor(root)))
	require.NoError(t, err)
	require.Contains(t, string(rootPage), "greeting")
	require.Contains(t, string(rootPage), "a friendly greeting")
	require.Contains(t, string(rootPage), "looks fine")

	childPage, err := os.ReadFile(filepath.Join(dir, exc.FilenameFor(child)))
	require.NoError(t, err)
	require.NotEmpty(t, childPage)
}

func TestWriteAllFailsWithoutHTMLDir(t *testing.T) {
	exc := artifact.NewExcavation(config.DefaultConfig())
	_, err := exc.Ingest([]byte("no html dir configured"))
	require.NoError(t, err)

	r := report.NewRenderer(exc, zerolog.Nop())
	require.Error(t, r.WriteAll())
}

func TestRenderArtifactIncludesInterpretation(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.HTMLDir = dir
	exc := artifact.NewExcavation(cfg)

	a, err := exc.Ingest([]byte("interpreted content"))
	require.NoError(t, err)
	_, err = a.CreateRange(0, 5)
	require.NoError(t, err)
	a.AddInterpretation("demo-examiner", func(w io.Writer, a *artifact.Artifact) error {
		_, err := io.WriteString(w, "<p>custom rendering</p>")
		return err
	})

	r := report.NewRenderer(exc, zerolog.Nop())
	require.NoError(t, r.WriteAll())

	page, err := os.ReadFile(filepath.Join(dir, exc.FilenameFor(a)))
	require.NoError(t, err)
	content := string(page)
	require.Contains(t, content, "custom rendering")
	require.Contains(t, content, "demo-examiner")

	// An artifact with a registered interpretation must not also show
	// the fallback children list or hexdump, even though it has a
	// child (report.go, following artifact.py:287-297).
	require.NotContains(t, content, "<h2>Derivation</h2>")
	require.NotContains(t, content, "<h2>Hexdump</h2>")
}
