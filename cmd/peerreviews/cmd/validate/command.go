// Package validate provides the validate command: check manual datasets
// against the embedded JSON schema.
package validate

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/peerreviews/cmd/application"
	"github.com/agentstation/peerreviews/internal/cmd/output"
	"github.com/agentstation/peerreviews/internal/cmd/table"
	"github.com/agentstation/peerreviews/internal/validation"
	"github.com/agentstation/peerreviews/pkg/errors"
)

// Result is the outcome for one file.
type Result struct {
	Path       string                 `json:"path" yaml:"path"`
	Valid      bool                   `json:"valid" yaml:"valid"`
	Violations []validation.Violation `json:"violations" yaml:"violations"`
}

// ErrInvalid is returned when at least one file has violations.
var ErrInvalid = errors.New("dataset has schema violations")

// NewCommand creates the validate command. defaultPath is checked when no
// files are given.
func NewCommand(app application.Application, defaultPath string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "validate [file...]",
		GroupID: "management",
		Short:   "Validate manual datasets against the schema",
		Long: `Validate checks that each file (JSON, or YAML by extension) is a
manual dataset: a {meta, entries} document whose entries carry an id, name,
organization or group id, integral years and string or numeric set members. Merging tolerates malformed records by skipping them;
validate reports them instead.

The command fails when any file has violations.`,
		Example: `  # Validate the configured dataset
  peerreviews validate

  # Validate several files and print JSON
  peerreviews validate data/peer-reviews.json extra.yaml -o json

  # Print the schema
  peerreviews validate --schema`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if schemaOnly, _ := cmd.Flags().GetBool("schema"); schemaOnly {
				_, err := cmd.OutOrStdout().Write(validation.Schema())
				return err
			}
			if len(args) == 0 {
				args = []string{defaultPath}
			}
			return run(cmd, app, args)
		},
	}

	cmd.Flags().Bool("schema", false, "print the embedded JSON schema and exit")

	return cmd
}

func run(cmd *cobra.Command, app application.Application, paths []string) error {
	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}
	format = output.DetectFormat(string(format))
	logger := app.Logger()

	results := make([]Result, 0, len(paths))
	failed := false
	for _, path := range paths {
		violations, err := validation.ValidateFile(path)
		if err != nil {
			return err
		}
		if violations == nil {
			violations = []validation.Violation{}
		}
		results = append(results, Result{Path: path, Valid: len(violations) == 0, Violations: violations})
		failed = failed || len(violations) > 0
		logger.Debug().Str("path", path).Int("violations", len(violations)).Msg("Validated dataset")
	}

	if format.IsTable() {
		err = output.NewFormatter(format).Format(cmd.OutOrStdout(), ToTableData(results))
	} else {
		err = output.FormatAny(cmd.OutOrStdout(), results, format)
	}
	if err != nil {
		return err
	}

	if failed {
		return ErrInvalid
	}
	return nil
}

// ToTableData lists one row per violation, or one "ok" row per valid file.
func ToTableData(results []Result) table.Data {
	data := table.Data{
		Headers:         []string{"File", "Path", "Problem"},
		ColumnAlignment: []table.Align{table.AlignLeft, table.AlignLeft, table.AlignLeft},
	}
	for _, r := range results {
		if r.Valid {
			data.Rows = append(data.Rows, []string{r.Path, "-", "ok"})
			continue
		}
		for _, v := range r.Violations {
			data.Rows = append(data.Rows, []string{r.Path, v.Path, v.Message})
		}
	}
	return data
}
