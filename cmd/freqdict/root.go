package main

import (
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/bastiangx/freqdict/internal/logger"
	"github.com/bastiangx/freqdict/pkg/config"
)

const skipConfigLoad = "skipConfigLoad"

type commandContext struct {
	configFlag string
	debug      bool
	quiet      bool

	config     *config.Config
	configPath string
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           AppName,
		Short:         "Build and prune word frequency dictionaries",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger.Setup(ctx.debug, ctx.quiet)
			if cmd.Annotations[skipConfigLoad] == "true" {
				return nil
			}
			return ctx.loadConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&ctx.debug, "debug", "d", false, "Toggle debug mode")
	rootCmd.PersistentFlags().BoolVarP(&ctx.quiet, "quiet", "q", false, "Only log warnings and errors")

	rootCmd.AddCommand(newBuildCommand(ctx))
	rootCmd.AddCommand(newCleanCommand(ctx))
	rootCmd.AddCommand(newConvertCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func (c *commandContext) loadConfig() error {
	cfg, path, err := config.LoadConfigWithPriority(strings.TrimSpace(c.configFlag))
	if err != nil {
		return err
	}
	log.Debugf("Using config file: %s", config.GetActiveConfigPath(path))
	c.config = cfg
	c.configPath = path
	return nil
}
