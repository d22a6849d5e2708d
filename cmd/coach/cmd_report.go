package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lifecoach/internal/perception"
	"lifecoach/internal/report"
	"lifecoach/internal/state"
	"lifecoach/internal/types"
)

var reportRating int

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Daily reports",
}

var reportGenCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate today's report",
	Long: `Builds today's report from tracked sessions, tasks, and goal deadlines.
When a model is configured it adds a short written commentary; without one
the report is the data summary alone.`,
	RunE: reportGenerate,
}

var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List reports",
	RunE:  reportList,
}

var reportShowCmd = &cobra.Command{
	Use:   "show [id or date]",
	Short: "Print a report",
	Args:  cobra.ExactArgs(1),
	RunE:  reportShow,
}

var reportRateCmd = &cobra.Command{
	Use:   "rate [id or date] [rating]",
	Short: "Rate a day from 1 to 5",
	Args:  cobra.ExactArgs(2),
	RunE:  reportRate,
}

func init() {
	reportCmd.AddCommand(reportGenCmd)
	reportCmd.AddCommand(reportListCmd)
	reportCmd.AddCommand(reportShowCmd)
	reportCmd.AddCommand(reportRateCmd)
}

func reportGenerate(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Commentary is best effort; a missing or failing model still yields
	// the objective summary.
	var client types.LLMClient
	if c, err := perception.NewClient(ctx, app.Store.Read().CoachSettings.ModelConfig); err == nil {
		client = c
	} else {
		logger.Warn("generating without commentary", zap.Error(err))
	}

	now := time.Now()
	title, content := report.New(client).Generate(ctx, app.Store.Read(), now)
	rep := app.Store.AddReport(now.Format("2006-01-02"), title, content, 0)
	fmt.Printf("%s\n\n%s\n", rep.Title, rep.Content)
	return nil
}

func reportList(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	st := app.Store.Read()
	if len(st.Reports) == 0 {
		fmt.Println("No reports.")
		return nil
	}
	for _, r := range st.Reports {
		line := fmt.Sprintf("%s  %s  %s", r.Date, r.ID, r.Title)
		if r.Rating > 0 {
			line += fmt.Sprintf("  (%d/5)", r.Rating)
		}
		fmt.Println(line)
	}
	return nil
}

func reportShow(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	rep, ok := findReport(app, args[0])
	if !ok {
		return fmt.Errorf("no report matches %q", args[0])
	}
	fmt.Printf("%s (%s)\n\n%s\n", rep.Title, rep.Date, rep.Content)
	return nil
}

func reportRate(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	rep, ok := findReport(app, args[0])
	if !ok {
		return fmt.Errorf("no report matches %q", args[0])
	}
	var rating int
	if _, err := fmt.Sscanf(args[1], "%d", &rating); err != nil || rating < 1 || rating > 5 {
		return fmt.Errorf("rating must be 1-5")
	}
	app.Store.UpdateReport(rep.ID, state.ReportUpdate{Rating: &rating})
	fmt.Printf("Rated %s: %d/5.\n", rep.Date, rating)
	return nil
}

func findReport(app *App, ref string) (types.DailyReport, bool) {
	st := app.Store.Read()
	for _, r := range st.Reports {
		if r.ID == ref || r.Date == ref {
			return r, true
		}
	}
	return types.DailyReport{}, false
}
