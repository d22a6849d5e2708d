package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lifecoach/internal/types"
)

var (
	sessionTask string
	sessionDay  string
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Track focus sessions",
}

var sessionStartCmd = &cobra.Command{
	Use:   "start [label]",
	Short: "Start a focus session",
	Args:  cobra.MinimumNArgs(1),
	RunE:  sessionStart,
}

var sessionStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running session",
	RunE:  sessionStop,
}

var sessionStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the running session, if any",
	RunE:  sessionStatus,
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions for a day (default today)",
	RunE:  sessionList,
}

func init() {
	sessionStartCmd.Flags().StringVar(&sessionTask, "task", "", "Task id or title this session works on")
	sessionListCmd.Flags().StringVar(&sessionDay, "day", "", "Day to list (YYYY-MM-DD, default today)")

	sessionCmd.AddCommand(sessionStartCmd)
	sessionCmd.AddCommand(sessionStopCmd)
	sessionCmd.AddCommand(sessionStatusCmd)
	sessionCmd.AddCommand(sessionListCmd)
}

func sessionStart(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	taskID := ""
	if sessionTask != "" {
		task, ok := findTask(app, sessionTask)
		if !ok {
			return fmt.Errorf("no task matches %q", sessionTask)
		}
		taskID = task.ID
	}

	session, ok := app.Store.StartSession(strings.Join(args, " "), taskID)
	if !ok {
		return fmt.Errorf("a session is already running; stop it first")
	}
	fmt.Printf("Started %q at %s.\n", session.Label, time.UnixMilli(session.StartTime).Format("15:04"))
	return nil
}

func sessionStop(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	session, ok := app.Store.StopSession()
	if !ok {
		fmt.Println("No session is running.")
		return nil
	}
	fmt.Printf("Stopped %q after %d minutes.\n", session.Label, session.DurationSeconds/60)
	return nil
}

func sessionStatus(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	st := app.Store.Read()
	if st.ActiveSessionID == "" {
		fmt.Println("No session is running.")
		return nil
	}
	for _, s := range st.Sessions {
		if s.ID == st.ActiveSessionID {
			elapsed := time.Since(time.UnixMilli(s.StartTime)).Round(time.Minute)
			fmt.Printf("Running: %q for %s.\n", s.Label, elapsed)
			return nil
		}
	}
	fmt.Println("No session is running.")
	return nil
}

func sessionList(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	day := time.Now()
	if sessionDay != "" {
		parsed, err := time.ParseInLocation("2006-01-02", sessionDay, time.Local)
		if err != nil {
			return fmt.Errorf("bad --day: %w", err)
		}
		day = parsed
	}

	st := app.Store.Read()
	shown := 0
	for _, s := range st.Sessions {
		t := time.UnixMilli(s.StartTime)
		if t.Year() != day.Year() || t.YearDay() != day.YearDay() {
			continue
		}
		if s.Type == types.SessionTypeCheckin {
			fmt.Printf("%s  check-in  %s\n", t.Format("15:04"), s.Label)
		} else if s.EndTime == nil {
			fmt.Printf("%s  running   %s\n", t.Format("15:04"), s.Label)
		} else {
			fmt.Printf("%s  %3d min   %s\n", t.Format("15:04"), s.DurationSeconds/60, s.Label)
		}
		shown++
	}
	if shown == 0 {
		fmt.Println("No sessions that day.")
	}
	return nil
}
