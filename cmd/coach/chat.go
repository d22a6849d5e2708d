package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lifecoach/internal/chat"
	"lifecoach/internal/cloudsync"
	"lifecoach/internal/config"
	"lifecoach/internal/logging"
	"lifecoach/internal/perception"
	"lifecoach/internal/report"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the coach interactively",
	Long: `Starts an interactive session with the coach.

The coach sees your pending tasks, active goals, and today's sessions, and can
record new tasks, goals, and focus sessions you mention. Saying good morning
or good night checks in the matching habit; good night also generates the
daily report.

Commands inside the session:
  /new    start a fresh conversation thread
  /quit   exit`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nBye.")
		cancel()
	}()

	settings := app.Store.Read().CoachSettings
	client, err := perception.NewClient(ctx, settings.ModelConfig)
	if err != nil {
		return err
	}

	coach := chat.New(app.Store, client, report.New(client))
	go coach.ConsumeFeedback(ctx)

	engine := startCloudSync(ctx, app)
	if engine != nil {
		defer engine.Stop()
		offerStartupRestore(ctx, engine, os.Stdin, os.Stdout)
	}

	watcher, err := config.NewWatcher(app.Workspace, func(cfg config.UserConfig) {
		if cfg.Coach != nil {
			app.Store.UpdateCoachSettings(*cfg.Coach)
		}
		rulesPath := cfg.CheckInRulesPath
		if rulesPath != "" && !filepath.IsAbs(rulesPath) {
			rulesPath = filepath.Join(config.Dir(app.Workspace), rulesPath)
		}
		if rules, err := config.LoadCheckInRules(rulesPath); err == nil {
			app.Store.SetLabelRules(rules)
		}
	})
	if err != nil {
		logger.Warn("config hot reload unavailable", zap.Error(err))
	} else if err := watcher.Start(ctx); err != nil {
		logger.Warn("config watcher failed to start", zap.Error(err))
	} else {
		defer watcher.Stop()
	}

	name := settings.Name
	if name == "" {
		name = "Coach"
	}
	fmt.Printf("%s is listening. /quit to exit.\n\n", name)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch line {
		case "/quit", "/exit":
			return nil
		case "/new":
			app.Store.NewChat()
			fmt.Println("Started a new conversation.")
			continue
		}

		turnCtx, turnCancel := context.WithTimeout(ctx, timeout)
		reply, err := coach.SendMessage(turnCtx, line)
		turnCancel()
		if err != nil {
			fmt.Println("Sorry, I couldn't reach the model. Everything you did is saved; please try again.")
			fmt.Println()
			continue
		}
		fmt.Printf("%s\n\n", reply)

		if ctx.Err() != nil {
			return nil
		}
	}
	return scanner.Err()
}

// offerStartupRestore runs the one-shot download pass at session start:
// fetch the cloud backup if one exists and ask before applying it. Errors
// are logged, never surfaced; the session starts either way.
func offerStartupRestore(ctx context.Context, engine *cloudsync.Engine, in io.Reader, out io.Writer) {
	dctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	found, err := engine.Download(dctx)
	if err != nil {
		logging.SyncWarn("startup download failed: %v", err)
		return
	}
	if !found {
		return
	}

	snap := engine.Pending()
	fmt.Fprintf(out, "Cloud backup found: %d tasks, %d goals, %d chats, %d reports.\n",
		len(snap.Tasks), len(snap.Goals), len(snap.ChatSessions), len(snap.Reports))
	fmt.Fprint(out, "Replace local state with it? [y/N] ")

	answer, _ := bufio.NewReader(in).ReadString('\n')
	if strings.ToLower(strings.TrimSpace(answer)) == "y" {
		if err := engine.Confirm(); err == nil {
			fmt.Fprintln(out, "Restored from cloud backup.")
		}
		return
	}
	engine.Cancel()
	fmt.Fprintln(out, "Kept local state.")
}

// startCloudSync wires debounced background upload when cloud backup is
// configured. Returns nil when the provider is off or the token is missing.
func startCloudSync(ctx context.Context, app *App) *cloudsync.Engine {
	sc := config.ResolveStorageConfig(app.Store.Read().StorageConfig)
	if sc.Provider != "cloud" || sc.BaseURL == "" || sc.Token == "" {
		return nil
	}
	engine := cloudsync.NewEngine(app.Store, cloudsync.NewClient(sc.BaseURL, sc.Token))
	engine.Start()
	return engine
}
