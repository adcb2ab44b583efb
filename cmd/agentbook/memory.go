package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Print the persisted activity journal and session stats",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.close()

		if ctx := app.mem.ContextString(8000); ctx != "" {
			fmt.Println(ctx)
		} else {
			fmt.Println("journal is empty")
		}
		app.printStats()
		return nil
	},
}
