// Package fetch provides the fetch command: read the ORCID peer-review
// registry and print the aggregated feed.
package fetch

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/agentstation/peerreviews/cmd/application"
	"github.com/agentstation/peerreviews/internal/cmd/output"
	"github.com/agentstation/peerreviews/internal/sources/local"
	"github.com/agentstation/peerreviews/pkg/constants"
	"github.com/agentstation/peerreviews/pkg/entries"
	"github.com/agentstation/peerreviews/pkg/errors"
	"github.com/agentstation/peerreviews/pkg/logging"
	"github.com/agentstation/peerreviews/pkg/sources"
)

// Flags holds the fetch command flags.
type Flags struct {
	Fallback bool
	Out      string
}

// NewCommand creates the fetch command.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "fetch",
		GroupID: "core",
		Short:   "Fetch peer reviews from the ORCID registry",
		Long: `Fetch reads the peer-review activity of the configured ORCID profile
using client credentials, folds review summaries into one entry per venue and
prints the resulting {meta, entries} feed.

Table output lists the entries; json and yaml print the whole envelope.
With --fallback a failure prints the fallback envelope instead of an error,
the same document the HTTP API serves.`,
		Example: `  # Print the live feed as JSON
  peerreviews fetch -o json

  # Refresh a checked-in feed file
  peerreviews fetch --out data/latest.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, app, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.Fallback, "fallback", false, "print the fallback envelope instead of failing")
	cmd.Flags().StringVar(&flags.Out, "out", "", "write the envelope to this file (YAML for .yaml/.yml, JSON otherwise)")

	return cmd
}

func run(cmd *cobra.Command, app application.Application, flags *Flags) error {
	ctx := logging.WithLogger(cmd.Context(), app.Logger())

	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}
	format = output.DetectFormat(string(format))

	registry, err := app.Registry()
	if err != nil {
		return err
	}

	var payload *sources.Payload
	if flags.Fallback {
		payload = registry.Latest(ctx)
	} else if payload, err = registry.Fetch(ctx); err != nil {
		return err
	}

	if flags.Out != "" {
		if err := Write(flags.Out, payload); err != nil {
			return err
		}
		app.Logger().Info().Str("path", flags.Out).Int("entries", payload.Len()).Msg("Feed written")
	}

	if format.IsTable() {
		return output.FormatEntries(cmd.OutOrStdout(), Entries(payload), format)
	}
	return output.FormatAny(cmd.OutOrStdout(), payload, format)
}

// Entries normalizes the payload records for display.
func Entries(p *sources.Payload) []entries.Entry {
	list := make([]entries.Entry, 0, p.Len())
	for _, raw := range p.Raw() {
		if e, ok := entries.Normalize(raw, entries.SourceRemote); ok {
			list = append(list, e)
		}
	}
	return list
}

// Write saves the envelope to path.
func Write(path string, p *sources.Payload) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return errors.WrapParse("json", path, err)
	}
	if local.IsYAML(path) {
		if data, err = yaml.JSONToYAML(data); err != nil {
			return errors.WrapParse("yaml", path, err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return errors.WrapIO("create", filepath.Dir(path), err)
	}
	return errors.WrapIO("write", path, os.WriteFile(path, append(data, '\n'), constants.FilePermissions))
}
