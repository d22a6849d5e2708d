package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lifecoach/internal/types"
)

var habitColor string

var habitCmd = &cobra.Command{
	Use:   "habit",
	Short: "Manage daily habits and check-ins",
}

var habitAddCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a habit",
	Args:  cobra.MinimumNArgs(1),
	RunE:  habitAdd,
}

var habitListCmd = &cobra.Command{
	Use:   "list",
	Short: "List habits with today's check-in status",
	RunE:  habitList,
}

var habitCheckCmd = &cobra.Command{
	Use:   "check [id]",
	Short: "Check in on a habit today (run again to undo)",
	Args:  cobra.ExactArgs(1),
	RunE:  habitCheck,
}

var habitRmCmd = &cobra.Command{
	Use:   "rm [id]",
	Short: "Delete a habit",
	Args:  cobra.ExactArgs(1),
	RunE:  habitRm,
}

func init() {
	habitAddCmd.Flags().StringVar(&habitColor, "color", "", "Accent color (#RRGGBB)")

	habitCmd.AddCommand(habitAddCmd)
	habitCmd.AddCommand(habitListCmd)
	habitCmd.AddCommand(habitCheckCmd)
	habitCmd.AddCommand(habitRmCmd)
}

func habitAdd(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	habit, err := app.Store.AddHabit(strings.Join(args, " "), habitColor)
	if err != nil {
		return err
	}
	fmt.Printf("Added habit %s: %s\n", habit.ID, habit.Title)
	return nil
}

func habitList(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	st := app.Store.Read()
	if len(st.Habits) == 0 {
		fmt.Println("No habits.")
		return nil
	}

	today := time.Now()
	for _, h := range st.Habits {
		mark := " "
		if checkedInToday(st, h.ID, today) {
			mark = "x"
		}
		fmt.Printf("[%s] %s  %s\n", mark, h.ID, h.Title)
	}
	return nil
}

func habitCheck(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	habit, ok := findHabit(app, args[0])
	if !ok {
		return fmt.Errorf("no habit matches %q", args[0])
	}
	if app.Store.ToggleCheckIn(habit.ID, time.Now(), false) {
		fmt.Printf("Checked in on %q.\n", habit.Title)
	} else {
		fmt.Printf("Removed today's check-in on %q.\n", habit.Title)
	}
	return nil
}

func habitRm(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	habit, ok := findHabit(app, args[0])
	if !ok {
		return fmt.Errorf("no habit matches %q", args[0])
	}
	app.Store.DeleteHabit(habit.ID)
	fmt.Printf("Deleted %q.\n", habit.Title)
	return nil
}

func checkedInToday(st types.AppState, habitID string, day time.Time) bool {
	for _, s := range st.Sessions {
		if s.HabitID != habitID || s.Type != types.SessionTypeCheckin {
			continue
		}
		t := time.UnixMilli(s.StartTime)
		if t.Year() == day.Year() && t.YearDay() == day.YearDay() {
			return true
		}
	}
	return false
}
