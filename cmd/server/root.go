package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ZanzyTHEbar/cognitive-risk-indicator/internal/config"
	"github.com/ZanzyTHEbar/cognitive-risk-indicator/internal/monitoring"
)

// Commands annotated with offline write their results to stdout and keep
// the logger silent.
const annotationOffline = "offline"

var (
	cfgFile string
	cfg     *config.Config
	logger  *monitoring.Logger
)

var rootCmd = &cobra.Command{
	Use:   "cri",
	Short: "Cognitive risk indicator service",
	Long: `Scores short behavioural assessments (speech, memory, reaction, Stroop and
tapping tests) into non-diagnostic cognitive risk indicators.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgFile)
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if _, ok := cmd.Annotations[annotationOffline]; ok {
			logger = monitoring.NewNopLogger()
			return nil
		}
		l, err := monitoring.NewLogger(cfg.Log)
		if err != nil {
			return eris.Wrap(err, "init logger")
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file (default ./config.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
