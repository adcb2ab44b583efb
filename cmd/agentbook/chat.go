package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Send one message to the agent and print its answer",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.close()

		reply, err := app.rt.Chat(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Println(reply)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return app.rt.Close(shutdownCtx)
	},
}
