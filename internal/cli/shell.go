package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/c-bata/go-prompt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roomdir-dev/roomdir/internal/catalog"
	"github.com/roomdir-dev/roomdir/internal/search"
	"github.com/roomdir-dev/roomdir/internal/transfer"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Search interactively with autocomplete",
	Long: `Open an interactive search prompt.

Type a query and press Enter to search; Tab cycles through completions
drawn from the directory. Lines starting with ':' are commands, see
':help'. Filters, query and page size are kept for the next session.`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

type shellCommand struct {
	name string
	args string
	help string
}

var shellCommands = []shellCommand{
	{":next", "", "Show the next page"},
	{":prev", "", "Show the previous page"},
	{":page", "<n>", "Jump to page n"},
	{":per-page", "<n>", "Results per page, 0 shows all"},
	{":building", "[name]", "Only rooms in a building; no name clears it"},
	{":floor", "[n]", "Only rooms on a floor; no floor clears it"},
	{":tag", "<name>", "Require a tag"},
	{":clear", "", "Remove every filter"},
	{":room", "<room>", "Show a room and its tags"},
	{":help", "", "Show this help"},
	{":quit", "", "Leave the shell"},
}

// shell is the state of one interactive session.
type shell struct {
	ctx  context.Context
	svc  *catalog.Service
	out  io.Writer
	view transfer.ViewState
	page int
	last search.Page
	quit bool

	vocabRev uint64
	vocab    []string
}

func newShell(ctx context.Context, svc *catalog.Service, out io.Writer) *shell {
	return &shell{
		ctx:  ctx,
		svc:  svc,
		out:  out,
		view: svc.ViewState(ctx),
		page: 1,
	}
}

func runShell(cmd *cobra.Command, args []string) error {
	return withWorkspace(cmd.Context(), func(ws *workspace) error {
		sh := newShell(cmd.Context(), ws.svc, cmd.OutOrStdout())
		fmt.Fprintf(sh.out, "roomdir shell: %d rooms. Type ':help' for commands.\n", ws.svc.Directory().Len())
		if sh.view.Query != "" || !sh.view.Filters.IsEmpty() {
			fmt.Fprintf(sh.out, "Restored query %q %s\n", sh.view.Query, describeFilters(sh.view.Filters))
		}

		p := prompt.New(
			sh.execute,
			sh.complete,
			prompt.OptionPrefix("rd> "),
			prompt.OptionTitle("roomdir"),
			prompt.OptionCompletionWordSeparator("\n"),
			prompt.OptionMaxSuggestion(uint16(ws.cfg.Search.SuggestLimit)),
			prompt.OptionSetExitCheckerOnInput(func(string, bool) bool { return sh.quit }),
		)
		p.Run()

		if err := ws.svc.SaveViewState(cmd.Context(), sh.view); err != nil {
			ws.logger.Debug("failed to save shell view", zap.Error(err))
		}
		return nil
	})
}

// execute runs one line of input.
func (s *shell) execute(input string) {
	input = strings.TrimSpace(input)
	if input == "" {
		return
	}
	if !strings.HasPrefix(input, ":") {
		s.view.Query = input
		s.page = 1
		s.search()
		return
	}

	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case ":quit", ":exit", ":q":
		s.quit = true
	case ":help":
		s.printHelp()
	case ":next":
		if !s.last.HasNext() {
			fmt.Fprintln(s.out, "Already on the last page")
			return
		}
		s.page++
		s.search()
	case ":prev":
		if !s.last.HasPrev() {
			fmt.Fprintln(s.out, "Already on the first page")
			return
		}
		s.page--
		s.search()
	case ":page":
		n, err := strconv.Atoi(arg)
		if err != nil || !search.ValidPage(n, s.last.TotalItems, s.last.PerPage) {
			fmt.Fprintf(s.out, "No page %q; there are %d pages\n", arg, s.last.TotalPages)
			return
		}
		s.page = n
		s.search()
	case ":per-page":
		n, err := strconv.Atoi(arg)
		if err != nil || n < 0 {
			fmt.Fprintln(s.out, "Usage: :per-page <n>, 0 shows all")
			return
		}
		s.view.ResultsPerPage = n
		s.page = 1
		s.search()
	case ":building":
		s.view.Filters.Building = arg
		s.page = 1
		s.search()
	case ":floor":
		s.view.Filters.Floor = arg
		s.page = 1
		s.search()
	case ":tag":
		if arg == "" {
			fmt.Fprintln(s.out, "Usage: :tag <name>")
			return
		}
		s.view.Filters.Tags = append(s.view.Filters.Tags, arg)
		s.page = 1
		s.search()
	case ":clear":
		s.view.Filters = search.Filters{}
		s.page = 1
		s.search()
	case ":room":
		s.showRoom(arg)
	default:
		fmt.Fprintf(s.out, "Unknown command: %s (try :help)\n", name)
	}
}

func (s *shell) search() {
	start := time.Now()
	s.last = s.svc.Search(s.view.Query, catalog.SearchOptions{
		Filters: s.view.Filters,
		Page:    s.page,
		PerPage: s.view.ResultsPerPage,
	})
	s.page = s.last.Page
	renderPage(s.out, newResultFormatter(s.view.Filters.Query(s.view.Query)), s.last, time.Since(start))
	if f := describeFilters(s.view.Filters); f != "" {
		fmt.Fprintln(s.out, f)
	}
}

func (s *shell) showRoom(ref string) {
	room, ok := s.svc.ResolveRoom(ref)
	if !ok {
		fmt.Fprintf(s.out, "No room matches %q\n", ref)
		return
	}
	detail, err := s.svc.Room(room.ID)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "%s\n", detail.Room.Label())
	if detail.Room.Department != "" {
		fmt.Fprintf(s.out, "  Department: %s\n", detail.Room.Department)
	}
	for _, t := range detail.CustomTags {
		fmt.Fprintf(s.out, "  Tag:   %s\n", t.Name)
	}
	for _, st := range detail.StaffTags {
		fmt.Fprintf(s.out, "  %s\n", st)
	}
}

func (s *shell) printHelp() {
	fmt.Fprintln(s.out, "Type a query to search. Commands:")
	for _, c := range shellCommands {
		usage := strings.TrimSpace(c.name + " " + c.args)
		fmt.Fprintf(s.out, "  %-20s %s\n", usage, c.help)
	}
}

// complete offers directory vocabulary for the whole line. When nothing
// matches the line, the last word is completed and the words before it are
// kept.
func (s *shell) complete(d prompt.Document) []prompt.Suggest {
	text := d.TextBeforeCursor()
	if strings.TrimSpace(text) == "" {
		return nil
	}

	if strings.HasPrefix(text, ":") {
		return s.completeCommand(text)
	}

	limit := s.svc.Config().Search.SuggestLimit
	if found := search.Suggest(s.vocabulary(), text, limit); len(found) > 0 {
		return toSuggestions("", found)
	}

	cut := strings.LastIndex(text, " ")
	if cut < 0 || cut == len(text)-1 {
		return nil
	}
	head, word := text[:cut+1], text[cut+1:]
	return toSuggestions(head, search.Suggest(s.vocabulary(), word, limit))
}

func (s *shell) completeCommand(text string) []prompt.Suggest {
	name, arg, hasArg := strings.Cut(text, " ")
	if !hasArg {
		out := make([]prompt.Suggest, 0, len(shellCommands))
		for _, c := range shellCommands {
			out = append(out, prompt.Suggest{Text: c.name, Description: c.help})
		}
		return prompt.FilterHasPrefix(out, name, true)
	}

	var values []string
	switch name {
	case ":building":
		values = s.svc.Directory().Buildings()
	case ":floor":
		values = s.svc.Directory().Floors()
	case ":tag":
		values = s.svc.Directory().CategoryTags()
	default:
		return nil
	}
	out := make([]prompt.Suggest, 0, len(values))
	for _, v := range values {
		out = append(out, prompt.Suggest{Text: name + " " + v})
	}
	return prompt.FilterHasPrefix(out, name+" "+arg, true)
}

// vocabulary caches the autocomplete list until the directory changes.
func (s *shell) vocabulary() []string {
	if rev := s.svc.Revision(); s.vocab == nil || rev != s.vocabRev {
		s.vocab = s.svc.Autocomplete()
		s.vocabRev = rev
	}
	return s.vocab
}

func toSuggestions(head string, values []string) []prompt.Suggest {
	out := make([]prompt.Suggest, len(values))
	for i, v := range values {
		out[i] = prompt.Suggest{Text: head + v}
	}
	return out
}

func describeFilters(f search.Filters) string {
	if f.IsEmpty() {
		return ""
	}
	var parts []string
	if f.Building != "" {
		parts = append(parts, "building="+f.Building)
	}
	if f.Floor != "" {
		parts = append(parts, "floor="+f.Floor)
	}
	for _, t := range f.Tags {
		parts = append(parts, "tag="+t)
	}
	return "(filters: " + strings.Join(parts, ", ") + ")"
}
