package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/cognitive-risk-indicator/internal/analysis"
	"github.com/ZanzyTHEbar/cognitive-risk-indicator/internal/security"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score one assessment offline",
	Long: `Run the scoring pipeline on a JSON assessment request and print the result.
Nothing is persisted.

Examples:
  # Score a saved request
  score --file request.json

  # Read from stdin and override the age
  cat request.json | score --file - --age 72`,
	Annotations: map[string]string{annotationOffline: ""},
	RunE:        runScore,
}

func init() {
	f := scoreCmd.Flags()
	f.String("file", "", "request JSON file, or - for stdin")
	f.Int("age", 0, "override profile.age")
	_ = scoreCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("file")
	req, err := readRequest(cmd, path)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("age") {
		age, _ := cmd.Flags().GetInt("age")
		if req.Profile == nil {
			req.Profile = &analysis.Profile{}
		}
		req.Profile.Age = &age
	}

	if err := security.ValidateAssessment(req); err != nil {
		return err
	}

	settings, err := cfg.ScoringSettings()
	if err != nil {
		return err
	}
	analyzer, err := analysis.NewAnalyzer(settings, cfg.FeatureSource())
	if err != nil {
		return err
	}

	out, err := analyzer.Analyze(cmd.Context(), *req)
	if err != nil {
		return eris.Wrap(err, "score")
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func readRequest(cmd *cobra.Command, path string) (*analysis.AssessmentRequest, error) {
	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(cmd.InOrStdin())
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "read request %s", path)
	}

	var req analysis.AssessmentRequest
	if len(raw) == 0 {
		return &req, nil
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, eris.Wrap(err, "decode request")
	}
	return &req, nil
}
