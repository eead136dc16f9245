package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/c-bata/go-prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomdir-dev/roomdir/internal/catalog"
	"github.com/roomdir-dev/roomdir/internal/models"
)

// =============================================================================
// Test Helpers
// =============================================================================

func newTestShell(t *testing.T) (*shell, *bytes.Buffer) {
	t.Helper()
	root := importedProject(t)
	cfg, err := LoadMergedConfig(root)
	require.NoError(t, err)

	svc, err := catalog.Open(context.Background(), root, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	var out bytes.Buffer
	return newShell(context.Background(), svc, &out), &out
}

// run executes one line and returns what it printed.
func runLine(sh *shell, out *bytes.Buffer, line string) string {
	out.Reset()
	sh.execute(line)
	return out.String()
}

func docFor(text string) prompt.Document {
	b := prompt.NewBuffer()
	b.InsertText(text, false, true)
	return *b.Document()
}

func suggestionTexts(sugs []prompt.Suggest) []string {
	out := make([]string, len(sugs))
	for i, s := range sugs {
		out[i] = s.Text
	}
	return out
}

// =============================================================================
// Execute Tests
// =============================================================================

func TestShell_Query(t *testing.T) {
	sh, out := newTestShell(t)

	text := runLine(sh, out, "office")
	assert.Contains(t, text, "[1] 101")
	assert.Equal(t, "office", sh.view.Query)
}

func TestShell_BlankLineDoesNothing(t *testing.T) {
	sh, out := newTestShell(t)

	assert.Empty(t, runLine(sh, out, "   "))
	assert.Empty(t, sh.view.Query)
}

func TestShell_Paging(t *testing.T) {
	sh, out := newTestShell(t)
	runLine(sh, out, "family")

	runLine(sh, out, ":per-page 1")
	assert.Equal(t, 1, sh.view.ResultsPerPage)
	assert.Equal(t, 1, sh.last.Page)
	assert.Equal(t, 2, sh.last.TotalPages)

	assert.Contains(t, runLine(sh, out, ":prev"), "Already on the first page")

	runLine(sh, out, ":next")
	assert.Equal(t, 2, sh.last.Page)
	assert.Contains(t, runLine(sh, out, ":next"), "Already on the last page")

	runLine(sh, out, ":prev")
	assert.Equal(t, 1, sh.last.Page)

	runLine(sh, out, ":page 2")
	assert.Equal(t, 2, sh.last.Page)

	assert.Contains(t, runLine(sh, out, ":page 5"), `No page "5"; there are 2 pages`)
	assert.Contains(t, runLine(sh, out, ":page x"), `No page "x"`)
	assert.Contains(t, runLine(sh, out, ":per-page -1"), "Usage: :per-page")
}

func TestShell_Filters(t *testing.T) {
	sh, out := newTestShell(t)

	text := runLine(sh, out, ":building TOWER")
	assert.Contains(t, text, "310")
	assert.Contains(t, text, "(filters: building=TOWER)")
	assert.Equal(t, 1, sh.last.TotalItems)

	text = runLine(sh, out, ":floor 2")
	assert.Contains(t, text, "floor=2")
	assert.Equal(t, 0, sh.last.TotalItems)

	runLine(sh, out, ":building")
	assert.Empty(t, sh.view.Filters.Building)
	assert.Equal(t, 1, sh.last.TotalItems)

	assert.Contains(t, runLine(sh, out, ":tag"), "Usage: :tag")

	runLine(sh, out, ":clear")
	assert.True(t, sh.view.Filters.IsEmpty())
	assert.Equal(t, 3, sh.last.TotalItems)
}

func TestShell_Room(t *testing.T) {
	sh, out := newTestShell(t)

	text := runLine(sh, out, ":room 204")
	assert.Contains(t, text, "204")
	assert.Contains(t, text, "Department: Family Medicine")
	assert.Contains(t, text, "Jane Doe")

	assert.Contains(t, runLine(sh, out, ":room 999"), `No room matches "999"`)
}

func TestShell_HelpUnknownAndQuit(t *testing.T) {
	sh, out := newTestShell(t)

	help := runLine(sh, out, ":help")
	for _, c := range shellCommands {
		assert.Contains(t, help, c.name)
	}

	assert.Contains(t, runLine(sh, out, ":bogus"), "Unknown command: :bogus")
	assert.False(t, sh.quit)

	runLine(sh, out, ":q")
	assert.True(t, sh.quit)
}

func TestShell_ViewStateRoundTrip(t *testing.T) {
	sh, out := newTestShell(t)
	runLine(sh, out, "exam")
	runLine(sh, out, ":building MAIN")

	require.NoError(t, sh.svc.SaveViewState(context.Background(), sh.view))

	restored := newShell(context.Background(), sh.svc, out)
	assert.Equal(t, "exam", restored.view.Query)
	assert.Equal(t, "MAIN", restored.view.Filters.Building)
}

// =============================================================================
// Completion Tests
// =============================================================================

func TestShellComplete_Empty(t *testing.T) {
	sh, _ := newTestShell(t)
	assert.Nil(t, sh.complete(docFor("")))
	assert.Nil(t, sh.complete(docFor("  ")))
}

func TestShellComplete_WholeLine(t *testing.T) {
	sh, _ := newTestShell(t)

	assert.Contains(t, suggestionTexts(sh.complete(docFor("31"))), "310")
}

func TestShellComplete_LastWord(t *testing.T) {
	sh, _ := newTestShell(t)

	assert.Contains(t, suggestionTexts(sh.complete(docFor("family 31"))), "family 310")
	assert.Nil(t, sh.complete(docFor("zzzz ")))
}

func TestShellComplete_Commands(t *testing.T) {
	sh, _ := newTestShell(t)

	assert.Equal(t, []string{":building"}, suggestionTexts(sh.complete(docFor(":bu"))))
	assert.Equal(t, []string{":building TOWER"}, suggestionTexts(sh.complete(docFor(":building t"))))
	assert.Contains(t, suggestionTexts(sh.complete(docFor(":floor "))), ":floor 3")
	assert.Nil(t, sh.complete(docFor(":room 2")))
}

func TestShellVocabulary_RefreshesOnChange(t *testing.T) {
	sh, _ := newTestShell(t)

	hasCrash := func(items []string) bool {
		for _, item := range items {
			if strings.Contains(strings.ToLower(item), "crash cart") {
				return true
			}
		}
		return false
	}
	assert.False(t, hasCrash(sh.vocabulary()))

	room, ok := sh.svc.ResolveRoom("204")
	require.True(t, ok)
	_, err := sh.svc.AddCustomTag(context.Background(), room.ID, models.TagInput{Name: "Crash Cart"})
	require.NoError(t, err)

	assert.True(t, hasCrash(sh.vocabulary()))
}
