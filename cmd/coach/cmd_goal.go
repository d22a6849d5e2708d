package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	goalDeadline string
	goalColor    string
	goalVision   string
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Manage goals",
}

var goalAddCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a goal",
	Args:  cobra.MinimumNArgs(1),
	RunE:  goalAdd,
}

var goalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List goals with deadline countdowns",
	RunE:  goalList,
}

var goalDoneCmd = &cobra.Command{
	Use:   "done [id]",
	Short: "Toggle a goal's completion",
	Args:  cobra.ExactArgs(1),
	RunE:  goalDone,
}

var goalRmCmd = &cobra.Command{
	Use:   "rm [id]",
	Short: "Delete a goal (linked tasks are kept and unlinked)",
	Args:  cobra.ExactArgs(1),
	RunE:  goalRm,
}

var visionCmd = &cobra.Command{
	Use:   "vision",
	Short: "Manage visions, the long-horizon themes goals attach to",
}

var visionAddCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a vision",
	Args:  cobra.MinimumNArgs(1),
	RunE:  visionAdd,
}

var visionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List visions",
	RunE:  visionList,
}

var visionRmCmd = &cobra.Command{
	Use:   "rm [id]",
	Short: "Delete a vision (linked goals are kept and unlinked)",
	Args:  cobra.ExactArgs(1),
	RunE:  visionRm,
}

func init() {
	goalAddCmd.Flags().StringVar(&goalDeadline, "deadline", "", "Deadline (YYYY-MM-DD)")
	goalAddCmd.Flags().StringVar(&goalColor, "color", "", "Accent color (#RRGGBB)")
	goalAddCmd.Flags().StringVar(&goalVision, "vision", "", "Vision id or title to link the goal to")

	goalCmd.AddCommand(goalAddCmd)
	goalCmd.AddCommand(goalListCmd)
	goalCmd.AddCommand(goalDoneCmd)
	goalCmd.AddCommand(goalRmCmd)

	visionCmd.AddCommand(visionAddCmd)
	visionCmd.AddCommand(visionListCmd)
	visionCmd.AddCommand(visionRmCmd)
}

func goalAdd(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	visionID := ""
	if goalVision != "" {
		vision, ok := findVision(app, goalVision)
		if !ok {
			return fmt.Errorf("no vision matches %q", goalVision)
		}
		visionID = vision.ID
	}

	goal, err := app.Store.AddGoal(strings.Join(args, " "), goalDeadline, goalColor, visionID, false)
	if err != nil {
		return err
	}
	fmt.Printf("Added goal %s: %s\n", goal.ID, goal.Title)
	return nil
}

func goalList(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	st := app.Store.Read()
	if len(st.Goals) == 0 {
		fmt.Println("No goals.")
		return nil
	}

	today := time.Now()
	for _, g := range st.Goals {
		mark := " "
		if g.Completed {
			mark = "x"
		}
		line := fmt.Sprintf("[%s] %s  %s", mark, g.ID, g.Title)
		if g.Deadline != "" {
			if due, err := time.Parse("2006-01-02", g.Deadline); err == nil && !g.Completed {
				days := int(due.Sub(today).Hours()/24) + 1
				switch {
				case days < 0:
					line += fmt.Sprintf("  (%s, overdue)", g.Deadline)
				case days == 0:
					line += fmt.Sprintf("  (%s, due today)", g.Deadline)
				default:
					line += fmt.Sprintf("  (%s, %d days left)", g.Deadline, days)
				}
			} else {
				line += fmt.Sprintf("  (%s)", g.Deadline)
			}
		}
		fmt.Println(line)
	}
	return nil
}

func goalDone(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	goal, ok := findGoal(app, args[0])
	if !ok {
		return fmt.Errorf("no goal matches %q", args[0])
	}
	app.Store.ToggleGoal(goal.ID, false)
	fmt.Printf("Toggled %q.\n", goal.Title)
	return nil
}

func goalRm(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	goal, ok := findGoal(app, args[0])
	if !ok {
		return fmt.Errorf("no goal matches %q", args[0])
	}
	app.Store.DeleteGoal(goal.ID)
	fmt.Printf("Deleted %q.\n", goal.Title)
	return nil
}

func visionAdd(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	vision := app.Store.AddVision(strings.Join(args, " "))
	fmt.Printf("Added vision %s: %s\n", vision.ID, vision.Title)
	return nil
}

func visionList(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	st := app.Store.Read()
	if len(st.Visions) == 0 {
		fmt.Println("No visions.")
		return nil
	}
	for _, v := range st.Visions {
		fmt.Printf("%s  %s\n", v.ID, v.Title)
	}
	return nil
}

func visionRm(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	vision, ok := findVision(app, args[0])
	if !ok {
		return fmt.Errorf("no vision matches %q", args[0])
	}
	app.Store.DeleteVision(vision.ID)
	fmt.Printf("Deleted %q.\n", vision.Title)
	return nil
}
