package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"qnotes/pkg/api"
	"qnotes/pkg/commands"
	"qnotes/pkg/gateway"
	"qnotes/pkg/viewmodel"
)

// Args represents parsed command line arguments
type Args struct {
	ConfigPath string
	Verbose    bool
	Server     string
	Database   string

	// Session operations
	Login    string
	Register string
	Password string
	Logout   bool

	// Note operations
	List      bool
	Page      int
	Priority  string
	Sort      string
	DateRange string
	Add       string
	Content   string
	Title     string
	Edit      string
	Delete    string
	Stats     bool

	// Import/Export operations
	ImportFile string
	ExportFile string
	TypeFlag   string

	flags *pflag.FlagSet
}

// ParseArgs parses argv (without the program name)
func ParseArgs(argv []string) (*Args, error) {
	args := &Args{}
	fs := pflag.NewFlagSet("qnotes", pflag.ContinueOnError)

	fs.StringVar(&args.ConfigPath, "config", "", "Path to configuration file")
	fs.BoolVarP(&args.Verbose, "verbose", "v", false, "Enable verbose logging")
	fs.StringVar(&args.Server, "server", "", "Notes API base URL")
	fs.StringVar(&args.Database, "database", "", "Session database (file path or postgres:// DSN)")

	fs.StringVar(&args.Login, "login", "", "Log in as USER (email)")
	fs.StringVar(&args.Register, "register", "", "Register USER (email) and log in")
	fs.StringVar(&args.Password, "password", "", "Password for --login/--register (or QNOTES_PASSWORD)")
	fs.BoolVar(&args.Logout, "logout", false, "Forget the stored session")

	fs.BoolVarP(&args.List, "list", "l", false, "List notes")
	fs.IntVar(&args.Page, "page", 0, "Page to list (zero-based)")
	fs.StringVar(&args.Priority, "priority", "", "Priority filter for --list, or priority for --add/--edit (NOW, LATER, SOMEDAY, DONE)")
	fs.StringVar(&args.Sort, "sort", "", "Sort for --list (date-desc, date-asc, priority)")
	fs.StringVar(&args.DateRange, "date-range", "", "Date range for --list (ALL, TODAY, PAST_SEVEN_DAYS)")
	fs.StringVar(&args.Add, "add", "", "Add a note with this title")
	fs.StringVar(&args.Content, "content", "", "Content for --add/--edit")
	fs.StringVar(&args.Title, "title", "", "New title for --edit")
	fs.StringVar(&args.Edit, "edit", "", "Edit the note with this id")
	fs.StringVar(&args.Delete, "delete", "", "Delete the note with this id")
	fs.BoolVar(&args.Stats, "stats", false, "Show statistics")

	fs.StringVar(&args.ImportFile, "import", "", "Import notes from file or directory")
	fs.StringVar(&args.ExportFile, "export", "", "Export notes to file (directory for --type md)")
	fs.StringVar(&args.TypeFlag, "type", "json", "Export file type (json, txt, md)")

	if err := fs.Parse(argv); err != nil {
		return nil, err
	}
	args.flags = fs
	return args, nil
}

// Bind registers the flags that double as configuration keys with v, so
// they override the config file and QNOTES_* variables when set
func (a *Args) Bind(v *viper.Viper) error {
	for key, flag := range map[string]string{
		"server":   "server",
		"database": "database",
		"verbose":  "verbose",
		"password": "password",
	} {
		if err := v.BindPFlag(key, a.flags.Lookup(flag)); err != nil {
			return fmt.Errorf("bind --%s: %w", flag, err)
		}
	}
	return nil
}

// ApplyConfig copies resolved values back after the config is loaded
func (a *Args) ApplyConfig(v *viper.Viper) {
	a.Verbose = v.GetBool("verbose")
	a.Password = v.GetString("password")
}

// ListPreferences applies --priority and --sort on top of saved preferences
func (a *Args) ListPreferences(saved viewmodel.Preferences) (viewmodel.Preferences, error) {
	prefs := saved
	if a.Priority != "" {
		if strings.EqualFold(a.Priority, "all") {
			prefs.Priority = nil
		} else {
			p, err := api.ParsePriority(a.Priority)
			if err != nil {
				return prefs, err
			}
			prefs.Priority = viewmodel.Filter(p)
		}
	}
	if a.Sort != "" {
		opt, err := viewmodel.ParseSortOption(a.Sort)
		if err != nil {
			return prefs, err
		}
		prefs.Sort = opt
	}
	return prefs, nil
}

// ListDateRange parses --date-range; empty means ALL
func (a *Args) ListDateRange() (gateway.DateRange, error) {
	if a.DateRange == "" {
		return gateway.DateRangeAll, nil
	}
	return gateway.ParseDateRange(a.DateRange)
}

// Dispatch runs the first command named by args. It reports false when
// there was nothing to run and the TUI should start.
func Dispatch(ctx context.Context, env *commands.Env, args *Args, saved viewmodel.Preferences) (bool, error) {
	switch {
	case args.Logout:
		return true, commands.HandleLogout(env)
	case args.Register != "":
		return true, commands.HandleLogin(ctx, env, args.Register, args.Password, true)
	case args.Login != "":
		return true, commands.HandleLogin(ctx, env, args.Login, args.Password, false)
	case args.Add != "":
		return true, commands.HandleAddNote(ctx, env, args.Add, args.Content, args.Priority)
	case args.Edit != "":
		return true, commands.HandleEditNote(ctx, env, args.Edit, args.Title, args.Content, args.Priority)
	case args.Delete != "":
		return true, commands.HandleDeleteNote(ctx, env, args.Delete)
	case args.Stats:
		return true, commands.HandleStats(ctx, env)
	case args.ImportFile != "":
		return true, commands.HandleImportCommand(ctx, env, args.ImportFile)
	case args.ExportFile != "":
		return true, commands.HandleExportCommand(ctx, env, args.ExportFile, args.TypeFlag)
	case args.List:
		prefs, err := args.ListPreferences(saved)
		if err != nil {
			return true, err
		}
		dateRange, err := args.ListDateRange()
		if err != nil {
			return true, err
		}
		return true, commands.HandleList(ctx, env, args.Page, prefs, dateRange)
	}
	return false, nil
}

// HandleCommands processes CLI commands and returns true if a command was
// handled. A failing command exits the process.
func HandleCommands(ctx context.Context, env *commands.Env, args *Args, saved viewmodel.Preferences) bool {
	handled, err := Dispatch(ctx, env, args, saved)
	if err != nil {
		fmt.Printf("Error %v\n", err)
		if errors.Is(err, gateway.ErrUnauthorized) {
			fmt.Println("Log in first with --login USER --password PASSWORD")
		}
		os.Exit(1)
	}
	return handled
}
