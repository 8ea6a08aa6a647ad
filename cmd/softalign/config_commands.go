package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"softalign/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to set data_dir and checkpoint_dir before running extraction.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate the configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if ctx.configFlag != nil {
				path = strings.TrimSpace(*ctx.configFlag)
			}
			cfg, resolved, exists, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", resolved)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderSettings(configRows(cfg)))
			return nil
		},
	}
}

func configRows(cfg *config.Config) []settingRow {
	return []settingRow{
		{"paths", "data_dir", cfg.Paths.DataDir},
		{"paths", "checkpoint_dir", cfg.Paths.CheckpointDir},
		{"paths", "decoding_dir", cfg.Paths.DecodingDir},
		{"paths", "log_dir", cfg.Paths.LogDir},
		{"generation", "beam", strconv.Itoa(cfg.Generation.Beam)},
		{"generation", "nbest", strconv.Itoa(cfg.Generation.NBest)},
		{"generation", "max_tokens", strconv.Itoa(cfg.Generation.MaxTokens)},
		{"generation", "max_sentences", strconv.Itoa(cfg.Generation.MaxSentences)},
		{"generation", "required_batch_size_multiple", strconv.Itoa(cfg.Generation.RequiredBatchSizeMultiple)},
		{"generation", "max_source_positions", strconv.Itoa(cfg.Generation.MaxSourcePositions)},
		{"generation", "max_target_positions", strconv.Itoa(cfg.Generation.MaxTargetPositions)},
		{"alignment", "task", cfg.Alignment.Task},
		{"alignment", "layer", strconv.Itoa(cfg.Alignment.Layer)},
		{"alignment", "heads", strconv.Itoa(cfg.Alignment.Heads)},
		{"alignment", "buffer_capacity", strconv.FormatInt(cfg.Alignment.BufferCapacity, 10)},
		{"logging", "format", cfg.Logging.Format},
		{"logging", "level", cfg.Logging.Level},
	}
}
