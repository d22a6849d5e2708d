package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"lifecoach/internal/persist"
)

var (
	exportDir string
	importYes bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the full snapshot to a JSON file",
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Replace local state with a previously exported snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	exportCmd.Flags().StringVar(&exportDir, "dir", ".", "Directory to write the export into")
	importCmd.Flags().BoolVarP(&importYes, "yes", "y", false, "Apply without asking")
}

func runExport(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	path, err := persist.Export(app.Store.Read(), exportDir)
	if err != nil {
		return err
	}
	fmt.Printf("Exported to %s\n", path)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	snap, err := persist.Import(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Import: %d tasks, %d goals, %d chats, %d reports.\n",
		len(snap.Tasks), len(snap.Goals), len(snap.ChatSessions), len(snap.Reports))

	if !importYes {
		fmt.Print("Replace local state with it? [y/N] ")
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Println("Kept local state.")
			return nil
		}
	}

	app.Store.Replace(snap)
	fmt.Println("Imported.")
	return nil
}
