// Package main provides an interactive CLI for running conversations
// against a live model, with SQLite persistence so a conversation can be
// resumed across runs.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/rickchristie/parley"
	"github.com/rickchristie/parley/hooks"
	"github.com/rickchristie/parley/integrationtest/jobapply"
	"github.com/rickchristie/parley/integrationtest/loggers"
	"github.com/rickchristie/parley/integrationtest/restaurant"
	"github.com/rickchristie/parley/integrationtest/testutil"
	"github.com/rickchristie/parley/store/sqlite"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorWhite  = "\033[37m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr,
			"%sError: %v%s\n",
			colorRed, err, colorReset)
		os.Exit(1)
	}
}

type menuItem struct {
	name        string
	description string
	// run executes a scripted scenario.
	run func(
		ctx context.Context,
		w io.Writer,
		config testutil.TestConfig,
	) error
	// collection starts an interactive chat when run is nil.
	collection func() *parley.Collection
}

func run() error {
	logDir := ".logs"
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf(
			"failed to create log directory: %w", err)
	}

	logFile, err := os.Create(filepath.Join(logDir, "cli.log"))
	if err != nil {
		return fmt.Errorf(
			"failed to create log file: %w", err)
	}
	defer logFile.Close()

	dataDir := ".parley"
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf(
			"failed to create data directory: %w", err)
	}

	if _, err := testutil.CreateModel(); err != nil {
		fmt.Fprintf(os.Stderr,
			"%sWARNING: %v%s\n",
			colorYellow, err, colorReset)
		fmt.Fprintf(os.Stderr,
			"%sConversations will fail until credentials are set.%s\n\n",
			colorYellow, colorReset)
	}

	rl, err := readline.New(
		colorCyan +
			"Enter selection (or 'q' to quit): " +
			colorReset)
	if err != nil {
		return fmt.Errorf(
			"failed to create readline: %w", err)
	}
	defer rl.Close()

	var menuItems []menuItem

	for _, tc := range restaurant.DinnerTestCases() {
		menuItems = append(menuItems, menuItem{
			name:        tc.Name + " (scripted)",
			description: tc.Description,
			run:         tc.Run,
		})
	}
	for _, tc := range jobapply.ScreeningTestCases() {
		menuItems = append(menuItems, menuItem{
			name:        tc.Name + " (scripted)",
			description: tc.Description,
			run:         tc.Run,
		})
	}

	menuItems = append(menuItems, menuItem{
		name:        "Dinner Order Chat",
		description: "Be the guest; the waiter fills out your order",
		collection:  restaurant.NewDinnerOrder,
	})
	menuItems = append(menuItems, menuItem{
		name:        "Screening Interview Chat",
		description: "Be the candidate; the recruiter fills out the screening form",
		collection:  jobapply.NewScreeningInterview,
	})

	fmt.Printf("%s%sAvailable Conversations:%s\n",
		colorBold, colorYellow, colorReset)
	fmt.Printf("%s%s%s\n",
		colorYellow,
		strings.Repeat("=", 24),
		colorReset)
	for i, item := range menuItems {
		fmt.Printf("  %s%d.%s %s%s%s - %s\n",
			colorCyan, i+1, colorReset,
			colorWhite, item.name, colorReset,
			item.description)
	}
	fmt.Println()

	for {
		input, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				fmt.Printf(
					"\n%sGoodbye!%s\n",
					colorGreen, colorReset)
				return nil
			}
			return fmt.Errorf(
				"failed to read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "q" || input == "Q" {
			fmt.Printf(
				"%sGoodbye!%s\n",
				colorGreen, colorReset)
			return nil
		}

		num, err := strconv.Atoi(input)
		if err != nil || num < 1 || num > len(menuItems) {
			fmt.Printf(
				"%sInvalid selection. "+
					"Please enter 1-%d.%s\n\n",
				colorRed, len(menuItems), colorReset)
			continue
		}

		ctx, cancel := context.WithCancel(context.Background())

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigCh
			fmt.Printf(
				"\n%sReceived interrupt, "+
					"cancelling...%s\n",
				colorYellow, colorReset)
			cancel()
		}()

		item := menuItems[num-1]

		if item.run != nil {
			fmt.Printf("\n%sRunning: %s%s\n",
				colorGreen, item.name, colorReset)
			config := testutil.InteractiveConfig()
			config.LogWriter = logFile
			err = item.run(ctx, os.Stdout, config)
		} else {
			err = runChat(ctx, rl, item.collection(), dataDir, logFile)
		}
		if err != nil && err != readline.ErrInterrupt {
			fmt.Fprintf(os.Stderr,
				"%sError: %v%s\n",
				colorRed, err, colorReset)
		}

		signal.Stop(sigCh)
		cancel()

		fmt.Printf("\n%s%s%s\n\n",
			colorDim,
			strings.Repeat("-", 60),
			colorReset)
	}
}

// runChat drives an interactive conversation. Each collection gets its own
// database, so every thread listed in it belongs to the chosen collection
// and can be resumed safely.
func runChat(
	ctx context.Context,
	rl *readline.Instance,
	c *parley.Collection,
	dataDir string,
	logFile io.Writer,
) error {
	model, err := testutil.CreateModel()
	if err != nil {
		return err
	}

	st, err := sqlite.Open(filepath.Join(dataDir, c.Name()+".db"))
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	registry := hooks.NewRegistry().Register(
		loggers.NewLoggerHookWithWriter(logFile),
	)
	engine := parley.NewEngine(c, model).
		WithStore(st).
		WithHooks(registry)

	threadID, err := pickThread(ctx, rl, st)
	if err != nil {
		return err
	}

	agentName := c.Role(parley.RoleAgent).Kind()

	fmt.Println()
	fmt.Printf("%sThread: %s%s\n", colorDim, threadID, colorReset)
	fmt.Printf(
		"%sType your message and press Enter. "+
			"'/snapshot' shows collected values, '/trait <name>' "+
			"activates a trait, 'exit' leaves.%s\n\n",
		colorDim, colorReset)

	// Fresh threads get the opening message; resumed ones get the agent's
	// last message replayed.
	reply, err := engine.Advance(ctx, threadID, "")
	if err != nil {
		return err
	}
	if reply != "" {
		fmt.Printf("%s%s:%s %s\n\n",
			colorGreen, agentName, colorReset, reply)
	}

	oldPrompt := rl.Config.Prompt
	rl.SetPrompt(colorCyan + colorBold + "You: " + colorReset)
	defer rl.SetPrompt(oldPrompt)

	for {
		input, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				fmt.Printf(
					"\n%sChat paused. The conversation is "+
						"saved and can be resumed.%s\n",
					colorYellow, colorReset)
				return nil
			}
			return fmt.Errorf(
				"failed to read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			fmt.Printf(
				"\n%sLeaving chat. The conversation is "+
					"saved and can be resumed.%s\n",
				colorGreen, colorReset)
			return nil
		}
		if input == "/snapshot" {
			if err := printSnapshot(ctx, engine, threadID); err != nil {
				fmt.Fprintf(os.Stderr,
					"%sError: %v%s\n",
					colorRed, err, colorReset)
			}
			continue
		}
		if name, ok := strings.CutPrefix(input, "/trait"); ok {
			activateTrait(ctx, engine, threadID, strings.TrimSpace(name))
			continue
		}

		select {
		case <-ctx.Done():
			fmt.Printf(
				"\n%sChat cancelled.%s\n",
				colorYellow, colorReset)
			return ctx.Err()
		default:
		}

		reply, err := engine.Advance(ctx, threadID, input)
		if err != nil {
			fmt.Fprintf(os.Stderr,
				"\n%sError processing message: %v%s\n",
				colorRed, err, colorReset)
			fmt.Fprintf(os.Stderr,
				"%sThe conversation was not changed; "+
					"you can send your message again.%s\n",
				colorDim, colorReset)
			continue
		}
		if reply != "" {
			fmt.Printf("\n%s%s:%s %s\n\n",
				colorGreen, agentName, colorReset, reply)
		}

		snap, ok, err := engine.Snapshot(ctx, threadID)
		if err != nil {
			return err
		}
		if ok && snap.State == parley.StateTeardown {
			fmt.Printf("%sThe conversation has concluded.%s\n\n",
				colorGreen, colorReset)
			testutil.PrintSnapshot(os.Stdout, snap)
			return nil
		}
	}
}

// pickThread lets the user resume a stored conversation or start a new one.
func pickThread(
	ctx context.Context,
	rl *readline.Instance,
	st *sqlite.Store,
) (string, error) {
	infos, err := st.List(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list conversations: %w", err)
	}

	var open []sqlite.ThreadInfo
	for _, info := range infos {
		if info.State != parley.StateTeardown {
			open = append(open, info)
		}
	}
	if len(open) == 0 {
		return parley.NewThreadID(), nil
	}

	fmt.Printf("\n%s%sResumable conversations:%s\n",
		colorBold, colorYellow, colorReset)
	for i, info := range open {
		fmt.Printf("  %s%d.%s %s %s(%s, %s)%s\n",
			colorCyan, i+1, colorReset,
			info.ThreadID,
			colorDim, info.State,
			info.UpdatedAt.Format("2006-01-02 15:04"),
			colorReset)
	}
	fmt.Printf("  %sn.%s start a new conversation\n",
		colorCyan, colorReset)

	oldPrompt := rl.Config.Prompt
	defer rl.SetPrompt(oldPrompt)
	rl.SetPrompt(colorCyan + "Resume [n]: " + colorReset)

	for {
		input, err := rl.Readline()
		if err != nil {
			return "", err
		}
		input = strings.TrimSpace(input)
		if input == "" || input == "n" || input == "N" {
			return parley.NewThreadID(), nil
		}
		num, err := strconv.Atoi(input)
		if err != nil || num < 1 || num > len(open) {
			fmt.Printf(
				"%sEnter 1-%d or 'n'.%s\n",
				colorRed, len(open), colorReset)
			continue
		}
		return open[num-1].ThreadID, nil
	}
}

func printSnapshot(
	ctx context.Context,
	engine *parley.Engine,
	threadID string,
) error {
	snap, ok, err := engine.Snapshot(ctx, threadID)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Printf("%sNothing collected yet.%s\n",
			colorDim, colorReset)
		return nil
	}
	fmt.Println()
	testutil.PrintSnapshot(os.Stdout, snap)
	fmt.Println()
	return nil
}

func activateTrait(
	ctx context.Context,
	engine *parley.Engine,
	threadID string,
	name string,
) {
	if name == "" {
		possible := engine.Collection().
			Role(parley.RoleRespondent).PossibleTraits()
		if len(possible) == 0 {
			fmt.Printf("%sThis collection declares no "+
				"possible traits.%s\n", colorDim, colorReset)
			return
		}
		fmt.Printf("%sDeclared traits:%s\n", colorYellow, colorReset)
		for _, p := range possible {
			fmt.Printf("  %s - %s\n", p.Name, p.Trigger)
		}
		return
	}

	err := engine.ActivateTrait(ctx, threadID, parley.RoleRespondent, name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%sError: %v%s\n",
			colorRed, err, colorReset)
		return
	}
	fmt.Printf("%sTrait activated: %s%s\n",
		colorGreen, name, colorReset)
}
