package cmd

import (
	"flag"

	"gopkg.in/yaml.v3"

	"github.com/go-drift/pane/pkg/config"
)

func init() {
	RegisterCommand(&Command{
		Name:  "config",
		Short: "Print the resolved configuration",
		Long: `Print the configuration the other commands would use, with defaults
filled in for keys missing from pane.yaml.`,
		Usage: "pane config [-config DIR]",
		Run:   runConfig,
	})
}

func runConfig(args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	dir := fs.String("config", ".", "directory containing pane.yaml")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := config.LoadOptional(*dir)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(output)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}
