package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/docr/internal/config"
	"github.com/jackzampolin/docr/internal/home"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage docr configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file to the docr home directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		if h.ConfigExists() && !configForce {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", h.ConfigPath())
		}

		if err := config.WriteDefault(h.ConfigPath()); err != nil {
			return err
		}
		fmt.Printf("Wrote default config to %s\n", h.ConfigPath())
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
