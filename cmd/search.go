package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/hr-assistant/internal/filtering"
	"github.com/spigell/hr-assistant/internal/roster"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Filter the roster by skills, experience, availability and department",
	Run: func(cmd *cobra.Command, _ []string) {
		search(cmd)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringP("skills", "s", "", "comma-separated skills, any of them matches")
	searchCmd.Flags().IntP("min-experience", "e", 0, "minimum years of experience")
	searchCmd.Flags().StringP("availability", "a", "", "availability status")
	searchCmd.Flags().String("department", "", "department name")
	searchCmd.Flags().StringSlice("skip-filter", nil, "filters to skip (skills, min_experience, availability, department)")
}

// search only needs the roster, so it skips the embedding bootstrap.
func search(cmd *cobra.Command) {
	ctx := context.Background()
	logger := newLogger()

	config, err := getConfig(viper.GetViper())
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	skills, _ := cmd.Flags().GetString("skills")
	minExperience, _ := cmd.Flags().GetInt("min-experience")
	availability, _ := cmd.Flags().GetString("availability")
	department, _ := cmd.Flags().GetString("department")
	skip, _ := cmd.Flags().GetStringSlice("skip-filter")

	store := roster.Open(ctx, rosterSource(config.Roster, logger), logger)

	criteria := &filtering.Config{
		Skills:        filtering.ParseSkills(skills),
		MinExperience: minExperience,
		Availability:  availability,
		Department:    department,
	}

	employees, statuses, err := runSearch(ctx, criteria, skip, store.All(), logger)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}

	for _, status := range statuses {
		logger.Debug("filter status",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}

	logger.Info("search finished", zap.Int("count", len(employees)))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]any{"employees": employees, "count": len(employees)}); err != nil {
		logger.Fatal("encoding result", zap.Error(err))
	}
}

// runSearch runs the default filters over records with the named filters
// switched off.
func runSearch(ctx context.Context, criteria *filtering.Config, skip []string, records []roster.EmployeeRecord, logger *zap.Logger) ([]roster.EmployeeRecord, []filtering.Status, error) {
	steps := filtering.Default()

	for _, name := range skip {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !slices.ContainsFunc(steps, func(f filtering.Filter) bool { return f.Name() == name }) {
			return nil, nil, fmt.Errorf("unknown filter %q", name)
		}
		filtering.DisableByName(steps, name, "skipped with --skip-filter")
	}

	employees, err := filtering.Run(ctx, criteria, filtering.Deps{Logger: logger}, steps, records)
	if err != nil {
		return nil, nil, err
	}

	return employees, filtering.Describe(steps), nil
}
