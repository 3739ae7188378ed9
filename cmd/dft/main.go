package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/mattn/go-isatty"

	"github.com/alwalxed/dft"
	"github.com/alwalxed/dft/internal/config"
	"github.com/alwalxed/dft/internal/logging"
	"github.com/alwalxed/dft/internal/project"
	"github.com/alwalxed/dft/internal/session"
	"github.com/alwalxed/dft/internal/store"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Globals are flags shared by every command.
type Globals struct {
	Config string `help:"Extra config file layered over ~/.config/dft/config.yaml." type:"path" placeholder:"PATH"`
}

// CLI is the top-level command structure for dft.
type CLI struct {
	Globals

	Version kong.VersionFlag `help:"Show version." short:"V"`
	New     NewCmd           `cmd:"" help:"Create a new project."`
	Open    OpenCmd          `cmd:"" help:"Open a project in the interactive tree view."`
	List    ListCmd          `cmd:"" aliases:"ls" help:"List projects."`
	Delete  DeleteCmd        `cmd:"" aliases:"rm" help:"Delete a project and its whole tree."`
}

// ErrExists is returned when creating a project whose name is taken.
var ErrExists = errors.New("project already exists")

// env is what a command needs once configuration is loaded.
type env struct {
	cfg    *config.Config
	store  *store.FileStore
	logger *log.Logger
	closer io.Closer
}

func (e *env) Close() {
	if e.closer != nil {
		_ = e.closer.Close()
	}
}

// loadConfig layers the user config and the --config file, then applies
// environment overrides.
func loadConfig(extra string) (*config.Config, error) {
	userPath, err := config.UserConfigPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadLayered(userPath, extra)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.ExpandPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setup loads configuration and opens the logger and the store. A log file
// that cannot be opened is reported on stderr and logging is disabled.
func (g *Globals) setup() (*env, error) {
	cfg, err := loadConfig(g.Config)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, logger: logging.Discard()}
	logger, closer, err := logging.OpenFile(cfg.Log.File, logging.OptionsFrom(cfg.Log.Level, cfg.Log.Format))
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %s\n", err)
	} else {
		e.logger, e.closer = logger, closer
	}
	e.store = store.NewFileStore(cfg.DataDir, store.WithLogger(e.logger))
	return e, nil
}

// --- New command ---

// NewCmd creates an empty project.
type NewCmd struct {
	Name string `arg:"" help:"Project name: letters, digits, '-' and '_'."`
}

// Run executes the new command.
func (c *NewCmd) Run(g *Globals) error {
	e, err := g.setup()
	if err != nil {
		return fmt.Errorf("new: %w", err)
	}
	defer e.Close()
	return c.run(os.Stdout, e.store)
}

func (c *NewCmd) run(w io.Writer, st *store.FileStore) error {
	p, err := project.New(c.Name)
	if err != nil {
		return fmt.Errorf("new: %w", err)
	}
	exists, err := st.Exists(p.Name)
	if err != nil {
		return fmt.Errorf("new: %w", err)
	}
	if exists {
		return fmt.Errorf("new: %w: %s", ErrExists, p.Name)
	}
	if err := st.Save(p); err != nil {
		return fmt.Errorf("new: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Created project %s\n", p.Name)
	_, _ = fmt.Fprintf(w, "Open it with: dft open %s\n", p.Name)
	return nil
}

// --- Open command ---

// OpenCmd opens a project in the interactive session.
type OpenCmd struct {
	Name string `arg:"" help:"Project to open."`
}

// teaRunner abstracts Bubble Tea program execution for testing.
type teaRunner interface {
	Run() (tea.Model, error)
}

// Run loads the project and launches the session TUI.
func (c *OpenCmd) Run(g *Globals) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return fmt.Errorf("open: requires a terminal (TTY)")
	}

	e, err := g.setup()
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer e.Close()

	p, err := c.load(e.store)
	if err != nil {
		return err
	}

	helpText, err := dft.HelpText(e.cfg.DataDir)
	if err != nil {
		e.logger.Warn("help text unavailable", "err", err)
	}

	m := session.New(p,
		session.WithSaver(e.store),
		session.WithLogger(e.logger),
		session.WithFeedbackDuration(e.cfg.Feedback.Duration),
		session.WithHelpText(helpText),
	)
	e.logger.Info("session started", "project", p.Name, "nodes", p.NodeCount())

	prog := tea.NewProgram(m, tea.WithAltScreen())
	return c.run(true, prog, e.store, p, e.logger)
}

// load reads the project and records the open.
func (c *OpenCmd) load(st *store.FileStore) (*project.Project, error) {
	p, err := st.Load(c.Name)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	p.Touch()
	if err := st.Save(p); err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	return p, nil
}

// run executes the tea program. If the program fails, the project is saved
// once more so edits made before the failure are not lost.
func (c *OpenCmd) run(isTTY bool, prog teaRunner, saver session.Saver, p *project.Project, logger *log.Logger) error {
	if !isTTY {
		return fmt.Errorf("open: requires a terminal (TTY)")
	}
	final, err := prog.Run()
	if err != nil {
		if saveErr := saver.Save(p); saveErr != nil {
			logger.Error("last-resort save failed", "project", p.Name, "err", saveErr)
		}
		return fmt.Errorf("open: %w", err)
	}
	if m, ok := final.(session.Model); ok && m.FinalSaveErr() != nil {
		return fmt.Errorf("open: saving on exit: %w", m.FinalSaveErr())
	}
	return nil
}

// --- List command ---

// ListCmd prints a table of stored projects.
type ListCmd struct{}

// Run executes the list command.
func (c *ListCmd) Run(g *Globals) error {
	e, err := g.setup()
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	defer e.Close()
	return c.run(color.Output, e.store)
}

func (c *ListCmd) run(w io.Writer, st *store.FileStore) error {
	projects, err := st.List()
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	if len(projects) == 0 {
		_, _ = fmt.Fprintln(w, "No projects yet. Create one with: dft new <name>")
		return nil
	}

	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("NAME"), bold.Sprint("NODES"), bold.Sprint("OPENED"), bold.Sprint("CREATED"), bold.Sprint("MODIFIED"))
	for _, s := range projects {
		tbl.AddRow(
			s.Name,
			s.NodeCount,
			s.OpenCount,
			s.CreatedAt.Local().Format("2006-01-02"),
			s.ModifiedAt.Local().Format("2006-01-02 15:04"),
		)
	}
	_, _ = fmt.Fprintln(w, tbl)
	return nil
}

// --- Delete command ---

// DeleteCmd removes a project.
type DeleteCmd struct {
	Name string `arg:"" help:"Project to delete."`
}

// Run executes the delete command.
func (c *DeleteCmd) Run(g *Globals) error {
	e, err := g.setup()
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	defer e.Close()
	return c.run(os.Stdout, e.store, e.logger)
}

func (c *DeleteCmd) run(w io.Writer, st *store.FileStore, logger *log.Logger) error {
	name, err := project.NormalizeName(c.Name)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if err := st.Delete(name); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	logger.Info("deleted project", "project", name)
	_, _ = fmt.Fprintf(w, "Deleted project %s\n", name)
	return nil
}

// Exit codes.
const (
	exitSuccess   = 0
	exitError     = 1
	exitNotFound  = 2
	exitCorrupted = 3
)

// exitCode maps an error to the appropriate exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, store.ErrNotFound):
		return exitNotFound
	case errors.Is(err, store.ErrCorrupted):
		return exitCorrupted
	default:
		return exitError
	}
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("dft"),
		kong.Description("Work through problems depth first, one level at a time."),
		kong.UsageOnError(),
		kong.Vars{"version": version + " " + commit + " " + date},
	)
	err := ctx.Run(&cli.Globals)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}
