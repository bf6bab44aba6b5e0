package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	ghostwrite "github.com/Paranoid-AF/ghostwrite"
	"github.com/Paranoid-AF/ghostwrite/generate"
	"github.com/Paranoid-AF/ghostwrite/persona"
)

func newModelsCmd(root *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List selectable models, including local LM Studio and Ollama models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ghostwrite.LoadConfig()
			if err != nil {
				return err
			}
			logger, closer := newLogger(root, cfg.Logging, os.Stderr)
			defer closer.Close()

			catalog := generate.NewModelCatalog(cfg, logger)
			defer catalog.Close()
			models, preferred := catalog.List(cmd.Context())

			out := cmd.OutOrStdout()
			if asJSON {
				return writeIndentedJSON(out, ghostwrite.ModelsResponse{Models: models, Preferred: preferred})
			}
			for _, m := range models {
				mark := " "
				if m.Value == preferred {
					mark = "*"
				}
				fmt.Fprintf(out, "%s %-40s %s\n", mark, m.Value, m.Label)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the relay's JSON response")
	return cmd
}

func newPersonasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "personas",
		Short: "List writing personas",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			for _, name := range persona.Names() {
				fmt.Fprintln(out, name)
			}
		},
	}
}

func newConfigCmd() *cobra.Command {
	var showDefaults, validate bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with API keys masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if showDefaults {
				return ghostwrite.WriteTOML(out, ghostwrite.DefaultConfig())
			}

			cfg, err := ghostwrite.LoadConfig()
			if err != nil {
				return err
			}
			if validate {
				warnings := ghostwrite.ValidateConfig(cfg)
				if len(warnings) == 0 {
					fmt.Fprintln(out, "config ok:", ghostwrite.ConfigPath())
				}
				for _, w := range warnings {
					fmt.Fprintln(out, "warning:", w)
				}
				return nil
			}
			return ghostwrite.WriteTOML(out, cfg.Masked())
		},
	}
	cmd.Flags().BoolVar(&showDefaults, "defaults", false, "print the built-in defaults")
	cmd.Flags().BoolVar(&validate, "validate", false, "report configuration problems")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "ghostwrite", version)
		},
	}
}

func writeIndentedJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
