package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	isatty "github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	ghostwrite "github.com/Paranoid-AF/ghostwrite"
	"github.com/Paranoid-AF/ghostwrite/client"
	"github.com/Paranoid-AF/ghostwrite/controller"
	"github.com/Paranoid-AF/ghostwrite/draft"
	"github.com/Paranoid-AF/ghostwrite/generate"
)

type draftOptions struct {
	model   string
	persona string
	server  string
}

func newDraftCmd(root *rootOptions) *cobra.Command {
	opts := &draftOptions{}
	cmd := &cobra.Command{
		Use:   "draft [initial text]",
		Short: "Write in the terminal with inline suggestions",
		Long: "Opens a full-screen editor on the terminal. Suggestions appear as gray text\n" +
			"after the cursor; Tab accepts, Esc dismisses, Ctrl-D finishes and prints the\n" +
			"text to stdout, Ctrl-C aborts.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsTerminal(os.Stdout.Fd()) {
				return errors.New("draft requires a terminal")
			}

			cfg, err := ghostwrite.LoadConfig()
			if err != nil {
				return err
			}
			// The screen belongs to the editor, so logs default to a file.
			logCfg := cfg.Logging
			if logCfg.File == "" {
				logCfg.File = filepath.Join(ghostwrite.ConfigDir(), "ghostwrite.log")
			}
			logger, closer := newLogger(root, logCfg, os.Stderr)
			defer closer.Close()
			slog.SetDefault(logger)
			for _, w := range ghostwrite.ValidateConfig(cfg) {
				logger.Warn("config", "warning", w)
			}

			model := firstNonEmpty(opts.model, cfg.Editor.DefaultModel)
			persona := firstNonEmpty(opts.persona, cfg.Editor.DefaultPersona)
			maxLen := cfg.Editor.MaxInputLength

			var completer controller.Completer
			if opts.server != "" {
				completer = client.New(opts.server)
			} else {
				engine := generate.NewEngine(cfg, generate.WithLogger(logger))
				defer engine.Close()
				maxLen = engine.MaxInputLength(model)
				completer = engine
			}

			tty, err := draft.OpenTTY()
			if err != nil {
				return err
			}
			text, runErr := draft.Run(cmd.Context(), completer, tty, tty, draft.Options{
				Model:          model,
				Persona:        persona,
				MaxInputLength: maxLen,
				ThinkingDelay:  time.Duration(cfg.Editor.ThinkingDelayMS) * time.Millisecond,
				FetchDelay:     time.Duration(cfg.Editor.FetchDelayMS) * time.Millisecond,
				Initial:        strings.Join(args, ""),
				Logger:         logger,
			})
			tty.Close()

			if errors.Is(runErr, draft.ErrInterrupt) {
				return nil
			}
			if runErr != nil {
				return runErr
			}

			out := cmd.OutOrStdout()
			if isatty.IsTerminal(os.Stdout.Fd()) {
				fmt.Fprintln(out, text)
			} else {
				fmt.Fprint(out, text)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.model, "model", "m", "", "model id, e.g. openai/gpt-4o-mini or ollama/llama3")
	cmd.Flags().StringVarP(&opts.persona, "persona", "p", "", "writing persona")
	cmd.Flags().StringVar(&opts.server, "server", "", "use a running relay (e.g. http://127.0.0.1:3000) instead of calling providers directly")
	return cmd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
