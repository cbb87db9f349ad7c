package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DragonRuins/life-hub-sub001/internal/prefs"
	"github.com/DragonRuins/life-hub-sub001/internal/tui"
	"github.com/DragonRuins/life-hub-sub001/internal/view"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Open the interactive console",
	RunE:  runConsole,
}

func runConsole(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	c, err := newClient(logger)
	if err != nil {
		return err
	}

	prefsPath, err := prefs.DefaultPath()
	if err != nil {
		return err
	}
	store, err := prefs.Open(prefsPath, logger)
	if err != nil {
		return fmt.Errorf("opening preferences: %w", err)
	}
	defer store.Close()

	theme, err := resolveTheme(store)
	if err != nil {
		return err
	}

	return tui.Run(tui.Options{
		Client:                   c,
		Prefs:                    store,
		Theme:                    theme,
		Logger:                   logger,
		RefreshInterval:          cfg.Console.RefreshInterval,
		SmartHomeRefreshInterval: cfg.Console.SmartHomeRefreshInterval,
	})
}

// resolveTheme picks the startup theme: an explicit override file wins,
// then the persisted preference, then the config default.
func resolveTheme(store *prefs.Store) (view.Theme, error) {
	if cfg.Console.ThemeFile != "" {
		return view.LoadOverride(cfg.Console.ThemeFile)
	}
	name := store.Get().Theme
	if name == "" {
		name = cfg.Console.Theme
	}
	return view.ByName(name), nil
}
