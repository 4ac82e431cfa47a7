// Package merge provides the merge command: aggregate a manual dataset and a
// remote feed and print the merged entries.
package merge

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/peerreviews"
	"github.com/agentstation/peerreviews/cmd/application"
	"github.com/agentstation/peerreviews/internal/cmd/filter"
	"github.com/agentstation/peerreviews/internal/cmd/output"
	"github.com/agentstation/peerreviews/internal/cmd/table"
	"github.com/agentstation/peerreviews/internal/sources/feed"
	"github.com/agentstation/peerreviews/internal/sources/local"
	"github.com/agentstation/peerreviews/pkg/differ"
	"github.com/agentstation/peerreviews/pkg/logging"
	"github.com/agentstation/peerreviews/pkg/matcher"
	"github.com/agentstation/peerreviews/pkg/reconciler"
	"github.com/agentstation/peerreviews/pkg/sources"
)

// Defaults are the configured locations used when flags are absent.
type Defaults struct {
	ManualPath string
	FeedURL    string
}

// Flags holds the merge command flags.
type Flags struct {
	Manual   string
	Remote   string
	Strategy string
	Strict   bool
	Stats    bool
	Out      string

	Pattern      string
	Source       string
	Organization string
	Year         int
	Since        int
}

// NewCommand creates the merge command.
func NewCommand(app application.Application, defaults Defaults) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "merge",
		GroupID: "core",
		Short:   "Merge the manual dataset with a remote feed",
		Long: `Merge reads a manual dataset and a remote feed, each given as a file
path (JSON or YAML) or an http(s) URL, reconciles records that describe the
same venue and prints the merged list.

A source that cannot be read contributes nothing and is reported as a
warning, unless --strict is set.`,
		Example: `  # Merge the configured sources
  peerreviews merge

  # Merge two files and print YAML
  peerreviews merge --manual data/peer-reviews.json --remote latest.json -o yaml

  # Only venues matching a glob, reviewed since 2020
  peerreviews merge --filter 'nature*' --since 2020`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.Manual == "" {
				flags.Manual = defaults.ManualPath
			}
			if flags.Remote == "" {
				flags.Remote = defaults.FeedURL
			}
			return run(cmd, app, flags)
		},
	}

	cmd.Flags().StringVar(&flags.Manual, "manual", "", "manual dataset path or URL (default from PEER_REVIEWS_MANUAL_PATH)")
	cmd.Flags().StringVar(&flags.Remote, "remote", "", "remote feed path or URL (default from PEER_REVIEWS_FEED_URL)")
	cmd.Flags().StringVar(&flags.Strategy, "strategy", string(matcher.StrategyLinearScan), "identity matching strategy: "+strategyNames())
	cmd.Flags().BoolVar(&flags.Strict, "strict", false, "fail when a source cannot be read")
	cmd.Flags().BoolVar(&flags.Stats, "stats", false, "print aggregation statistics and what the feed changed to stderr")
	cmd.Flags().StringVar(&flags.Out, "out", "", "also write the merged {meta, entries} document to this file")

	cmd.Flags().StringVarP(&flags.Pattern, "filter", "f", "", "glob or regex matched against id, name, organization and aliases")
	cmd.Flags().StringVar(&flags.Source, "source", "", "only entries with this source tag (manual, remote, merged)")
	cmd.Flags().StringVar(&flags.Organization, "organization", "", "only entries whose organization contains this text")
	cmd.Flags().IntVar(&flags.Year, "year", 0, "only entries reviewed in this year")
	cmd.Flags().IntVar(&flags.Since, "since", 0, "only entries last reviewed in or after this year")

	return cmd
}

func run(cmd *cobra.Command, app application.Application, flags *Flags) error {
	ctx := cmd.Context()
	logger := app.Logger()

	strategy, err := matcher.ParseStrategy(flags.Strategy)
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}
	if format == "" {
		format = output.DetectFormat("")
	}

	f, err := filter.New(flags.Pattern)
	if err != nil {
		return err
	}
	f.Source = flags.Source
	f.Organization = flags.Organization
	f.Year = flags.Year
	f.Since = flags.Since

	client, err := peerreviews.New(
		peerreviews.WithManualSource(SourceFor(sources.ManualID, flags.Manual)),
		peerreviews.WithRemoteSource(SourceFor(sources.RemoteID, flags.Remote)),
		peerreviews.WithReconcilerOptions(
			reconciler.WithStrategy(strategy),
			reconciler.WithLogger(logger),
		),
		// Every matched entry flips to "merged"; the other fields say more.
		peerreviews.WithDifferOptions(differ.WithIgnoredFields("source")),
	)
	if err != nil {
		return err
	}

	changes, err := client.Update(logging.WithLogger(ctx, logger))
	if err != nil {
		if flags.Strict || ctx.Err() != nil {
			return err
		}
		logger.Warn().Err(err).Msg("Merging with partial data")
	}
	snap := client.Snapshot()

	if flags.Out != "" {
		if err := client.Save(flags.Out); err != nil {
			return err
		}
		logger.Info().Str("path", flags.Out).Int("entries", len(snap.Entries)).Msg("Merged feed written")
	}

	if flags.Stats {
		stderr := cmd.ErrOrStderr()
		if err := output.NewFormatter(output.FormatTable).Format(stderr, table.StatsToTableData(snap.Stats, strategy)); err != nil {
			return err
		}
		// Changes relative to the manual dataset alone.
		changes.Print(stderr)
	}

	return output.FormatEntries(cmd.OutOrStdout(), f.Apply(snap.Entries), format)
}

// SourceFor picks the source implementation for a location: http(s) URLs
// are fetched, anything else is read from disk. An empty location yields nil.
func SourceFor(id sources.ID, location string) sources.Source {
	switch {
	case location == "":
		return nil
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return sources.Rename(id, feed.New(location, nil))
	default:
		return sources.Rename(id, local.New(local.WithPath(location)))
	}
}

func strategyNames() string {
	names := make([]string, 0, len(matcher.Strategies()))
	for _, s := range matcher.Strategies() {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}
