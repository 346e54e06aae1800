package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/glamour"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zenote/zen"
	"github.com/zenote/zen/ai"
	"github.com/zenote/zen/editor"
	"github.com/zenote/zen/internal/config"
	"github.com/zenote/zen/internal/notes"
)

const usage = `usage: zen [flags] [command]

commands:
  (none)              edit the most recent note, or -note <id>
  list                list notes
  show <id>           render a note as Markdown
  new [title]         create a note and open it
  rename <id> <title> change a note's title
  pin <id>            toggle a note's pin
  delete <id>         delete a note

flags:
`

func main() {
	configPath := flag.String("config", "", "Path to config.toml (default: XDG config dir)")
	debug := flag.Bool("debug", false, "Enable debug logging to zen-debug.log")
	noteID := flag.Int64("note", 0, "Note ID to open")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Println("zen", zen.VersionTag())
		return
	}

	logger := slog.New(slog.DiscardHandler)
	if *debug {
		f, err := tea.LogToFile("zen-debug.log", "zen")
		if err != nil {
			fmt.Fprintf(os.Stderr, "fatal: could not open debug log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	if err := run(*configPath, *noteID, flag.Args(), logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, noteID int64, args []string, logger *slog.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	dbPath, err := cfg.StoragePath()
	if err != nil {
		return fmt.Errorf("resolve storage path: %w", err)
	}
	store, err := notes.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	cmd := ""
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "":
		n, err := resolveNote(ctx, store, noteID)
		if err != nil {
			return err
		}
		return edit(cfg, store, n, logger)
	case "list":
		return listNotes(ctx, os.Stdout, store)
	case "show":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		return showNote(ctx, os.Stdout, store, id)
	case "new":
		n, err := store.Create(ctx, strings.Join(args, " "), "")
		if err != nil {
			return err
		}
		return edit(cfg, store, n, logger)
	case "rename":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		title := strings.Join(args[1:], " ")
		return store.Update(ctx, id, notes.Patch{Title: &title})
	case "pin":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		return store.TogglePin(ctx, id)
	case "delete":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		return store.Delete(ctx, id)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// resolveNote picks the note to edit: the requested one, else the most
// recent, else a new empty note.
func resolveNote(ctx context.Context, store *notes.Store, id int64) (*notes.Note, error) {
	if id != 0 {
		return store.Get(ctx, id)
	}
	list, err := store.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(list) > 0 {
		return &list[0], nil
	}
	return store.Create(ctx, notes.DefaultTitle, "")
}

func parseID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, errors.New("missing note id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid note id %q", args[0])
	}
	return id, nil
}

func listNotes(ctx context.Context, w io.Writer, store *notes.Store) error {
	list, err := store.List(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tUPDATED\t")
	for _, n := range list {
		title := n.Title
		if n.Pinned {
			title = "* " + title
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t\n", n.ID, title, n.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func showNote(ctx context.Context, w io.Writer, store *notes.Store, id int64) error {
	n, err := store.Get(ctx, id)
	if err != nil {
		return err
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return err
	}
	out, err := r.Render("# " + n.Title + "\n\n" + n.Content)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

func edit(cfg *config.Config, store *notes.Store, n *notes.Note, logger *slog.Logger) error {
	ecfg := cfg.EditorConfig()
	ecfg.Markdown = n.Content
	ecfg.NoteID = n.ID
	ecfg.Store = store
	ecfg.Clipboard = systemClipboard{}
	ecfg.Logger = logger
	ecfg.Relay = ai.NewClient(cfg.Relay.BaseURL,
		ai.WithTimeout(cfg.Relay.Timeout.Duration),
		ai.WithLogger(logger),
		ai.WithUserAgent(zen.UserAgent()),
	)

	m := newApp(n.Title, editor.New(ecfg))
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if a, ok := final.(app); ok && a.err != nil {
		return a.err
	}
	return nil
}
