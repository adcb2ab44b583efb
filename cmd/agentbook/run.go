package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var headless bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the agent: autonomous cycles plus an interactive prompt",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		loopDone := make(chan error, 1)
		go func() { loopDone <- app.orch.Run(ctx) }()

		if headless {
			<-ctx.Done()
		} else {
			app.repl(ctx)
			stop()
		}
		<-loopDone

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return app.rt.Close(shutdownCtx)
	},
}

func init() {
	runCmd.Flags().BoolVar(&headless, "headless", false, "Run autonomous cycles only, without the interactive prompt")
}

// repl reads lines from stdin until EOF, /quit, or ctx cancellation.
// Slash commands control the agent; anything else is an interactive chat
// turn.
func (a *app) repl(ctx context.Context) {
	fmt.Println("agentbook interactive mode. Type /help for commands, /quit to exit.")

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		fmt.Print("> ")
		select {
		case <-ctx.Done():
			fmt.Println()
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if strings.HasPrefix(line, "/") {
				if !a.command(ctx, line) {
					return
				}
				continue
			}

			reply, err := a.rt.Chat(ctx, line)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			if reply == "" {
				reply = "(no answer)"
			}
			fmt.Println(reply)
		}
	}
}

// command executes one slash command; returns false to exit the repl.
func (a *app) command(ctx context.Context, line string) bool {
	switch strings.Fields(line)[0] {
	case "/quit", "/exit":
		return false
	case "/pause":
		a.rt.Pause()
		fmt.Println("autonomous cycles paused (the cycle counter keeps ticking)")
	case "/resume":
		a.rt.Resume()
		fmt.Println("autonomous cycles resumed")
	case "/cycle":
		fmt.Println("running one cycle now...")
		a.orch.RunOnce(ctx)
	case "/stats":
		a.printStats()
	case "/memory":
		fmt.Println(a.mem.ContextString(4000))
	case "/personality":
		p := a.rt.Persona().Snapshot()
		fmt.Printf("name: %s\ndescription: %s\ntone: %s\ninterests: %v\nopinions: %v\ninstructions: %v\n",
			p.Name, p.Description, p.Tone, p.Interests, p.Opinions, p.Instructions)
	case "/help":
		fmt.Println("commands: /pause /resume /cycle /stats /memory /personality /quit")
	default:
		fmt.Println("unknown command; try /help")
	}
	return true
}

func (a *app) printStats() {
	s := a.rt.Stats().Snapshot()
	c := a.mem.Counts()
	fmt.Printf("cycles: %d  requests: %d  tokens: %d in / %d out  cost: $%.4f\n",
		a.mem.CycleCount(), s.Requests, s.InputTokens, s.OutputTokens, s.CostUSD)
	fmt.Printf("journal: %d read, %d replied, %d created, %d votes, %d bots known\n",
		c.PostsRead, c.PostsReplied, c.PostsCreated, c.VotesCast, c.BotsKnown)
}

func secondsDuration(n int) time.Duration {
	return time.Duration(n) * time.Second
}
