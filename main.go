package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"puntuale/internal/config"
	"puntuale/internal/csvio"
	"puntuale/internal/meeting"
	"puntuale/internal/tui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		startFlag  string
		threshold  int
	)

	root := &cobra.Command{
		Use:           "puntuale [file.csv]",
		Short:         "Timer per riunioni con agenda, scostamenti e proiezione di fine",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("threshold") {
				if threshold < 0 {
					return fmt.Errorf("threshold must not be negative")
				}
				cfg.IgnoreThresholdSeconds = threshold
			}

			start := time.Now()
			if startFlag != "" {
				start, err = parseStartFlag(startFlag)
				if err != nil {
					return err
				}
			}

			m := meeting.New(start)
			m.IgnoreThreshold = time.Duration(cfg.IgnoreThresholdSeconds) * time.Second

			if len(args) == 1 {
				acts, err := importFile(args[0])
				if err != nil {
					return err
				}
				m.Append(acts)
			}

			app := tui.NewApp(m, cfg)
			p := tea.NewProgram(app, tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("running ui: %w", err)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: user config dir)")
	root.Flags().StringVar(&startFlag, "start", "", "meeting start time as HH:MM (default: now)")
	root.Flags().IntVar(&threshold, "threshold", 0, "discard sessions shorter than this many seconds")

	root.AddCommand(newCheckCmd())
	root.AddCommand(newConvertCmd(&configPath))
	return root
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return config.Default(), nil
		}
	}
	return config.Load(path)
}

// parseStartFlag applies an HH:MM flag to today's date.
func parseStartFlag(s string) (time.Time, error) {
	parsed, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --start %q: use HH:MM", s)
	}
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, time.Local), nil
}

// importFile reads a CSV agenda, accepting both the full data export
// and the bare template.
func importFile(path string) ([]meeting.Activity, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	text := string(raw)
	if csvio.Detect(text) {
		return csvio.ParseData(text), nil
	}
	return csvio.ParseTemplate(text), nil
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file.csv>",
		Short: "Validate a CSV file and summarize its activities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			text := string(raw)

			dialect := "template"
			var acts []meeting.Activity
			if csvio.Detect(text) {
				dialect = "data"
				acts = csvio.ParseData(text)
			} else {
				acts = csvio.ParseTemplate(text)
			}

			if len(acts) == 0 {
				return fmt.Errorf("%s", csvio.DataFormatHint)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s dialect, %d activities\n", args[0], dialect, len(acts))

			var planned time.Duration
			completed := 0
			for _, a := range acts {
				planned += a.Planned
				if a.Status == meeting.StatusCompleted {
					completed++
				}
				actual := "-"
				if a.Actual != nil {
					actual = fmt.Sprintf("%d min", a.ActualMinutes())
				}
				fmt.Fprintf(out, "  %-40s %4d min  %s\n", a.Name, a.PlannedMinutes(), actual)
			}
			fmt.Fprintf(out, "total planned: %d min, completed: %d/%d\n",
				int(planned.Minutes()), completed, len(acts))
			return nil
		},
	}
}

func newConvertCmd(configPath *string) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "convert <data.csv>",
		Short: "Convert a data export into a reusable agenda template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			text := string(raw)
			if !csvio.Detect(text) {
				return fmt.Errorf("%s is not a data export", args[0])
			}
			acts := csvio.ParseData(text)
			if len(acts) == 0 {
				return fmt.Errorf("%s", csvio.DataFormatHint)
			}

			if outPath == "" {
				cfg, err := loadConfig(*configPath)
				if err != nil {
					return err
				}
				outPath = filepath.Join(cfg.ResolveExportDir(), csvio.TemplateFilename(time.Now()))
			}
			if err := csvio.WriteTemplate(acts, outPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d activities to %s\n", len(acts), outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default: template in export dir)")
	return cmd
}
