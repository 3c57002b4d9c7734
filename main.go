package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"qnotes/pkg/cli"
	"qnotes/pkg/commands"
	"qnotes/pkg/config"
	"qnotes/pkg/database"
	"qnotes/pkg/gateway"
	"qnotes/pkg/ui"
	"qnotes/pkg/utils"
	"qnotes/pkg/viewmodel"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		fmt.Printf("Error loading environment: %v\n", err)
		os.Exit(1)
	}

	args, err := cli.ParseArgs(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Printf("Error parsing arguments: %v\n", err)
		os.Exit(2)
	}

	v := viper.New()
	if err := args.Bind(v); err != nil {
		fmt.Printf("Error binding flags: %v\n", err)
		os.Exit(1)
	}
	cfg, styles, err := config.Load(v, args.ConfigPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	args.ApplyConfig(v)

	utils.InitLogger(args.Verbose)
	defer utils.CloseLogger()
	utils.Log("Using server %s, session database %s", cfg.Server, cfg.Database)

	store, err := database.Open(cfg.Database)
	if err != nil {
		fmt.Printf("Error opening session database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	client := gateway.New(cfg.Server, store,
		gateway.WithTimeout(cfg.Timeout),
		gateway.WithLogger(utils.Logger()),
	)
	utils.Log("Using notes API at %s", client.BaseURL())

	prefs := loadPreferences(store, cfg)

	env := &commands.Env{Notes: client, Session: store, Out: os.Stdout}
	if cli.HandleCommands(context.Background(), env, args, prefs) {
		return
	}

	username, err := store.Username()
	if err != nil {
		utils.Log("Error reading username: %v", err)
	}

	model := ui.NewModel(ui.Options{
		Notes:       client,
		Session:     store,
		Preferences: prefs,
		LoggedIn:    store.LoggedIn(),
		Username:    username,
		Config:      cfg,
		Styles:      styles,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}

// loadPreferences returns the saved list preferences, falling back to the
// configured default sort
func loadPreferences(store *database.Store, cfg config.Config) viewmodel.Preferences {
	fallback := viewmodel.DefaultPreferences()
	if opt, err := viewmodel.ParseSortOption(cfg.DefaultSort); err == nil {
		fallback.Sort = opt
	} else {
		utils.Log("Ignoring default_sort: %v", err)
	}

	prefs, err := store.LoadPreferences(fallback)
	if err != nil {
		utils.Log("Error loading preferences: %v", err)
		return fallback
	}
	return prefs
}
