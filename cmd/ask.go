package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/hr-assistant/internal/pipeline"
	"github.com/spigell/hr-assistant/internal/utils"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	nameStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	scoreStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	busyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

var askCmd = &cobra.Command{
	Use:   "ask [query]",
	Short: "Ask a staffing question; starts an interactive prompt when no query is given",
	Run: func(_ *cobra.Command, args []string) {
		ask(strings.TrimSpace(strings.Join(args, " ")))
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func ask(query string) {
	ctx := context.Background()

	logger := newLogger()
	rt := bootstrap(ctx, logger)
	defer rt.close(ctx)

	if query != "" {
		if err := answer(ctx, rt.pipeline, query, os.Stdout); err != nil {
			logger.Fatal("processing query", zap.Error(err))
		}
		return
	}

	for {
		prompt := promptui.Prompt{
			Label: "Staffing question (empty to exit)",
		}

		input, err := prompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return
			}
			logger.Fatal("reading prompt", zap.Error(err))
		}

		input = strings.TrimSpace(input)
		if input == "" {
			logger.Info("exiting", zap.String("reason", "empty query"))
			return
		}

		if err := answer(ctx, rt.pipeline, input, os.Stdout); err != nil {
			logger.Error("processing query", zap.Error(err))
		}
	}
}

func answer(ctx context.Context, p *pipeline.Pipeline, query string, w io.Writer) error {
	result, err := p.Process(ctx, query)
	if err != nil {
		return err
	}
	fmt.Fprint(w, renderResult(result))
	return nil
}

func renderResult(result *pipeline.QueryResult) string {
	var b strings.Builder
	b.WriteString(result.Response)
	b.WriteString("\n\n")

	if len(result.Employees) == 0 {
		return b.String()
	}

	b.WriteString(titleStyle.Render(fmt.Sprintf("Matches (confidence %s)", utils.Percent(result.Confidence))))
	b.WriteString("\n")
	for i, e := range result.Employees {
		score := 0.0
		if i < len(result.Scores) {
			score = result.Scores[i]
		}
		status := mutedStyle
		if !e.IsAvailable() {
			status = busyStyle
		}
		fmt.Fprintf(&b, "%d. %s %s %s %s\n",
			i+1,
			nameStyle.Render(e.Name),
			mutedStyle.Render(fmt.Sprintf("%d years,", e.ExperienceYears)),
			status.Render(e.Availability),
			scoreStyle.Render(utils.Percent(score)),
		)
	}
	return b.String()
}
