package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/pinchtab/todobench/internal/suite"
)

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "List the suite's steps, or replay them against an in-memory TodoMVC",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		simulate, _ := cmd.Flags().GetBool("simulate")
		if simulate {
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			cfg.URL = "memory://todomvc"
			return runSuite(cmd.Context(), simDriver{}, cfg, 0, logger, out)
		}

		_, err = fmt.Fprintln(out, stepsTable(suite.New(cfg.Items).Only(cfg.Only...)))
		return err
	},
}

// stepsTable lists the steps as plain aligned columns.
func stepsTable(s suite.Suite) string {
	cell := lipgloss.NewStyle().PaddingRight(2)
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderHeader(false).
		BorderColumn(false).
		StyleFunc(func(row, col int) lipgloss.Style { return cell }).
		Headers("#", "STEP", "TARGET")
	for i, st := range s.Steps {
		t.Row(fmt.Sprint(i), st.Name, describe(st.Work))
	}
	return t.Render()
}

func describe(w suite.Work) string {
	switch w := w.(type) {
	case suite.InputTodo:
		return fmt.Sprintf(".%s value=%q", suite.ClassNewTodo, w.Label())
	case suite.PressEnter:
		return fmt.Sprintf(".%s keydown Enter", suite.ClassNewTodo)
	case suite.Click:
		return fmt.Sprintf(".%s[%d] click", w.Class, w.Index)
	default:
		return fmt.Sprintf("%T", w)
	}
}

func init() {
	rootCmd.AddCommand(stepsCmd)
	stepsCmd.Flags().Bool("simulate", false, "replay against an in-memory TodoMVC and print the report")
	addSuiteFlags(stepsCmd)
}
