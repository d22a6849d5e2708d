package main

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"lifecoach/internal/config"
	"lifecoach/internal/logging"
	"lifecoach/internal/persist"
	"lifecoach/internal/state"
)

// App bundles the long-lived pieces every subcommand needs: the state store
// backed by the local snapshot database, and the resolved user config.
type App struct {
	Workspace string
	Store     *state.Store
	Local     *persist.Local
	Config    config.UserConfig
}

// openApp loads the snapshot, builds the store, and wires every commit back
// to the local database. Subcommands mutate the store and close the app; the
// commit hook makes each mutation durable before the process exits.
func openApp() (*App, error) {
	ws := resolveWorkspace()

	if err := logging.Initialize(ws); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	cfg, err := config.LoadUserConfig(ws)
	if err != nil {
		return nil, err
	}

	local, err := persist.Open(ws)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	store := state.NewStore(local.Load())
	store.OnCommit(func() {
		if err := local.Save(store.Read()); err != nil {
			logging.StoreError("commit save failed: %v", err)
		}
	})

	rulesPath := cfg.CheckInRulesPath
	if rulesPath != "" && !filepath.IsAbs(rulesPath) {
		rulesPath = filepath.Join(config.Dir(ws), rulesPath)
	}
	rules, err := config.LoadCheckInRules(rulesPath)
	if err != nil {
		logger.Warn("check-in rules not loaded, using defaults", zap.Error(err))
	} else {
		store.SetLabelRules(rules)
	}

	if cfg.Coach != nil {
		store.UpdateCoachSettings(*cfg.Coach)
	}
	if cfg.Storage != nil {
		store.UpdateStorageConfig(*cfg.Storage)
	}

	return &App{Workspace: ws, Store: store, Local: local, Config: cfg}, nil
}

// Close flushes the final snapshot and releases the database.
func (a *App) Close() {
	if err := a.Local.Save(a.Store.Read()); err != nil {
		logging.StoreError("final save failed: %v", err)
	}
	if err := a.Local.Close(); err != nil {
		logging.StoreError("close failed: %v", err)
	}
	logging.CloseAll()
}

func resolveWorkspace() string {
	if workspace != "" {
		return workspace
	}
	home, err := os.UserHomeDir()
	if err != nil {
		cwd, _ := os.Getwd()
		return cwd
	}
	return home
}
