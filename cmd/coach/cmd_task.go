package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	taskGoal     string
	taskDeadline string
	taskAll      bool
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a task",
	Args:  cobra.MinimumNArgs(1),
	RunE:  taskAdd,
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending tasks (--all for completed too)",
	RunE:  taskList,
}

var taskDoneCmd = &cobra.Command{
	Use:   "done [id]",
	Short: "Toggle a task's completion",
	Args:  cobra.ExactArgs(1),
	RunE:  taskDone,
}

var taskRmCmd = &cobra.Command{
	Use:   "rm [id]",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE:  taskRm,
}

func init() {
	taskAddCmd.Flags().StringVar(&taskGoal, "goal", "", "Goal id or title to link the task to")
	taskAddCmd.Flags().StringVar(&taskDeadline, "deadline", "", "Deadline (YYYY-MM-DD)")
	taskListCmd.Flags().BoolVar(&taskAll, "all", false, "Include completed tasks")

	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskDoneCmd)
	taskCmd.AddCommand(taskRmCmd)
}

func taskAdd(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	goalID := ""
	if taskGoal != "" {
		goal, ok := findGoal(app, taskGoal)
		if !ok {
			return fmt.Errorf("no goal matches %q", taskGoal)
		}
		goalID = goal.ID
	}

	task := app.Store.AddTask(strings.Join(args, " "), goalID, taskDeadline, false)
	fmt.Printf("Added task %s: %s\n", task.ID, task.Title)
	return nil
}

func taskList(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	st := app.Store.Read()
	goals := map[string]string{}
	for _, g := range st.Goals {
		goals[g.ID] = g.Title
	}

	shown := 0
	for _, t := range st.Tasks {
		if t.Completed && !taskAll {
			continue
		}
		mark := " "
		if t.Completed {
			mark = "x"
		}
		line := fmt.Sprintf("[%s] %s  %s", mark, t.ID, t.Title)
		if t.Deadline != "" {
			line += fmt.Sprintf("  (due %s)", t.Deadline)
		}
		if g, ok := goals[t.GoalID]; ok && t.GoalID != "" {
			line += fmt.Sprintf("  -> %s", g)
		}
		fmt.Println(line)
		shown++
	}
	if shown == 0 {
		fmt.Println("No tasks.")
	}
	return nil
}

func taskDone(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	task, ok := findTask(app, args[0])
	if !ok {
		return fmt.Errorf("no task matches %q", args[0])
	}
	app.Store.ToggleTask(task.ID, false)
	fmt.Printf("Toggled %q.\n", task.Title)
	return nil
}

func taskRm(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	task, ok := findTask(app, args[0])
	if !ok {
		return fmt.Errorf("no task matches %q", args[0])
	}
	app.Store.DeleteTask(task.ID)
	fmt.Printf("Deleted %q.\n", task.Title)
	return nil
}
