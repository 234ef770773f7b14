// Command insights runs the Spotify 2023 analysis pipeline over a catalog
// CSV and prints the resulting summary and model tables. It is a thin
// presentation consumer of the public insights package; all invariants live
// in the library.
package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	insights "github.com/zmazen/Spotify-Top-Tracks-Insights-2023"
	"github.com/zmazen/Spotify-Top-Tracks-Insights-2023/internal/version"
)

var (
	cfgFile   string
	inputPath string
	topK      int
	workers   int
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "insights",
	Short: "Analyze the Spotify 2023 top-tracks catalog",
	Long: `insights cleans the Spotify 2023 catalog, derives release dates and
track ages, summarizes solo/collaboration and top-artist rankings, and fits
a random forest and a linear regression that test whether four audio
features explain stream counts.`,
	RunE: runAnalysis,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Info())
	},
}

func init() {
	rootCmd.Flags().StringVarP(&inputPath, "input", "i", "", "path to the catalog CSV (required unless set in config)")
	rootCmd.Flags().StringVar(&cfgFile, "config", "", "optional YAML config file")
	rootCmd.Flags().IntVar(&topK, "top", 0, "ranking table size (overrides config)")
	rootCmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines for tree fitting (overrides config)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "zap log level (overrides config)")
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runAnalysis(cmd *cobra.Command, args []string) error {
	cfg, err := insights.LoadConfig(cfgFile)
	if err != nil {
		return err
	}
	if inputPath != "" {
		cfg.InputPath = inputPath
	}
	if topK > 0 {
		cfg.TopK = topK
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if cfg.InputPath == "" {
		return fmt.Errorf("an input file is required (--input or config)")
	}

	report, err := insights.Run(cfg)
	if err != nil {
		return err
	}

	printReport(cmd.OutOrStdout(), report)
	return nil
}

func printReport(out io.Writer, report *insights.Report) {
	fmt.Fprintf(out, "Cleaned tracks: %d (dropped %d rows with unparsable streams)\n\n", report.Rows, report.DroppedRows)
	fmt.Fprintf(out, "Solo: %d (%.2f%%)  Collaboration: %d (%.2f%%)\n\n",
		report.Collab.Solo, report.Collab.SoloPct, report.Collab.Collaboration, report.Collab.CollaborationPct)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TOP ARTISTS\tSTREAMS")
	for _, a := range report.TopArtists {
		fmt.Fprintf(w, "%s\t%d\n", a.Artist, a.Streams)
	}
	fmt.Fprintln(w, "\t")
	fmt.Fprintln(w, "TOP TRACKS\tARTIST\tSTREAMS")
	for _, t := range report.TopTracks {
		fmt.Fprintf(w, "%s\t%s\t%d\n", t.Track, t.Artist, t.Streams)
	}
	w.Flush()

	for _, ft := range report.TopByFeature {
		fmt.Fprintf(out, "\nTop tracks by %s\n", ft.Feature)
		fw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(fw, "TRACK\tARTIST\tVALUE\tSTREAMS")
		for _, r := range ft.Rows {
			fmt.Fprintf(fw, "%s\t%s\t%.1f\t%d\n", r.Track, r.Artist, r.Value, r.Streams)
		}
		fw.Flush()
	}

	printCorrelations(out, report.Correlations)

	fmt.Fprintf(out, "\nTrack age vs streams (%d tracks)\n", len(report.AgeStreams))
	aw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(aw, "TRACK\tARTIST\tAGE\tSTREAMS")
	for _, p := range report.AgeStreams {
		fmt.Fprintf(aw, "%s\t%s\t%d\t%d\n", p.Track, p.Artist, p.AgeYears, p.Streams)
	}
	aw.Flush()

	for _, artifact := range []insights.ModelReport{report.Forest, report.Linear} {
		fmt.Fprintf(out, "\nModel %s: R2=%.4f RMSE=%.4f\n", artifact.Name, artifact.R2, artifact.RMSE)
		mw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(mw, "FEATURE\tVALUE")
		for _, row := range artifact.Explanation {
			fmt.Fprintf(mw, "%s\t%.6f\n", row.Feature, row.Value)
		}
		mw.Flush()
		if artifact.Intercept != nil {
			fmt.Fprintf(out, "intercept: %.6f\n", *artifact.Intercept)
		}
	}
}

func printCorrelations(out io.Writer, corr insights.Correlation) {
	fmt.Fprintln(out, "\nCorrelations (streams and audio features)")
	cw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprint(cw, "\t")
	for _, label := range corr.Labels {
		fmt.Fprintf(cw, "%s\t", label)
	}
	fmt.Fprintln(cw)
	for i, label := range corr.Labels {
		fmt.Fprintf(cw, "%s\t", label)
		for j := range corr.Labels {
			fmt.Fprintf(cw, "%.3f\t", corr.Values[i][j])
		}
		fmt.Fprintln(cw)
	}
	cw.Flush()
}
