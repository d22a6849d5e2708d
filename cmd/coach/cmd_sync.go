package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"lifecoach/internal/cloudsync"
	"lifecoach/internal/config"
)

var syncYes bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Cloud backup",
	Long: `Backs the whole snapshot up to the configured cloud store and restores
from it. Restore replaces local state, so it asks before applying.

Configure with storage settings in .coach/config.json, or set the token via
COACH_CLOUD_TOKEN.`,
}

var syncPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload the local snapshot",
	RunE:  syncPush,
}

var syncPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Download the cloud snapshot and replace local state",
	RunE:  syncPull,
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cloud backup configuration and what the cloud currently holds",
	RunE:  syncStatus,
}

func init() {
	syncPullCmd.Flags().BoolVarP(&syncYes, "yes", "y", false, "Apply without asking")

	syncCmd.AddCommand(syncPushCmd)
	syncCmd.AddCommand(syncPullCmd)
	syncCmd.AddCommand(syncStatusCmd)
}

func openSyncEngine(app *App) (*cloudsync.Engine, error) {
	sc := config.ResolveStorageConfig(app.Store.Read().StorageConfig)
	if sc.Provider != "cloud" {
		return nil, fmt.Errorf("cloud backup is not enabled; set storage.provider to \"cloud\"")
	}
	if sc.BaseURL == "" || sc.Token == "" {
		return nil, fmt.Errorf("cloud backup needs a base URL and a token (or %s)", config.EnvCloudToken)
	}
	return cloudsync.NewEngine(app.Store, cloudsync.NewClient(sc.BaseURL, sc.Token)), nil
}

func syncPush(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	engine, err := openSyncEngine(app)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := engine.Upload(ctx); err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	fmt.Println("Uploaded.")
	return nil
}

func syncPull(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	engine, err := openSyncEngine(app)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	found, err := engine.Download(ctx)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	if !found {
		fmt.Println("No cloud backup found.")
		return nil
	}

	snap := engine.Pending()
	fmt.Printf("Cloud backup: %d tasks, %d goals, %d chats, %d reports.\n",
		len(snap.Tasks), len(snap.Goals), len(snap.ChatSessions), len(snap.Reports))

	if !syncYes {
		fmt.Print("Replace local state with it? [y/N] ")
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			engine.Cancel()
			fmt.Println("Kept local state.")
			return nil
		}
	}

	if err := engine.Confirm(); err != nil {
		return err
	}
	fmt.Println("Restored from cloud backup.")
	return nil
}

func syncStatus(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	sc := config.ResolveStorageConfig(app.Store.Read().StorageConfig)
	if sc.Provider != "cloud" {
		fmt.Println("Cloud backup: off")
		return nil
	}
	fmt.Printf("Cloud backup: on\nEndpoint: %s\n", sc.BaseURL)
	if sc.Token == "" {
		fmt.Printf("Token: missing (set %s)\n", config.EnvCloudToken)
		return nil
	}
	fmt.Println("Token: configured")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	client := cloudsync.NewClient(sc.BaseURL, sc.Token)

	core, coreFound, err := client.Get(ctx, cloudsync.KeyCore)
	if err != nil {
		return fmt.Errorf("cloud unreachable: %w", err)
	}
	if !coreFound {
		if _, legacyFound, err := client.Get(ctx, cloudsync.KeyLegacy); err == nil && legacyFound {
			fmt.Println("Cloud holds a legacy backup; `coach sync push` will migrate it.")
		} else {
			fmt.Println("Cloud holds no backup yet.")
		}
		return nil
	}
	archive, archiveFound, _ := client.Get(ctx, cloudsync.KeyArchive)
	fmt.Printf("Cloud backup present: core %d bytes", len(core))
	if archiveFound {
		fmt.Printf(", archive %d bytes", len(archive))
	}
	fmt.Println()
	return nil
}
