package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:         "config",
	Short:       "Print the effective configuration",
	Long:        "Print the configuration after defaults, the config file and CRI_ environment overrides are merged and validated.",
	Annotations: map[string]string{annotationOffline: ""},
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := *cfg
		if out.RateLimit.RedisPassword != "" {
			out.RateLimit.RedisPassword = "********"
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(out)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
