package cmd

import (
	"fmt"
	"os"

	"scene-publisher/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "scene-publisher",
	Short: "Scene Publisher Service",
	Long: `Scene Publisher imports external scene manifests and publishes their
textures, materials, meshes, actors, sequences and variants into a shared
object graph, keeping user edits across re-imports.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// configDir is where .env and config.yaml are looked up.
var configDir string

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console encoding at debug level gives readable CLI errors
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "Directory holding .env and config.yaml")
}
