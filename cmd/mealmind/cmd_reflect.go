package main

import (
	"time"

	"github.com/spf13/cobra"

	"mealmind/internal/agents"
	"mealmind/internal/store"
)

var reflectGoal string

var reflectCmd = &cobra.Command{
	Use:   "reflect",
	Short: "Generate the weekly reflection from logged history",
	Long: `Summarizes the trailing week of meals into discovered patterns, wins,
and one gentle focus for next week. Needs at least 5 logged meals.`,
	Args: cobra.NoArgs,
	RunE: runReflect,
}

func init() {
	reflectCmd.Flags().StringVar(&reflectGoal, "goal", "", "user goal")
}

func runReflect(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	db, err := store.Open(cfg.Storage.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	now := time.Now().UTC()
	weekAgo := now.AddDate(0, 0, -7).Format("2006-01-02")
	meals, err := db.MealsSince(ctx, weekAgo)
	if err != nil {
		return err
	}

	// Prior week supplies the trend baseline.
	twoWeeksAgo := now.AddDate(0, 0, -14).Format("2006-01-02")
	older, err := db.MealsSince(ctx, twoWeeksAgo)
	if err != nil {
		return err
	}
	var priorWeek []agents.MealRecord
	for _, m := range older {
		if m.Date < weekAgo {
			priorWeek = append(priorWeek, m)
		}
	}

	agent := agents.NewWeeklyReflectionAgent(logger)
	result := agent.Process(agents.ReflectionInput{
		Meals:         meals,
		UserGoal:      reflectGoal,
		PriorWeekDays: agents.ActiveDayCount(priorWeek),
		HasPriorWeek:  len(priorWeek) > 0,
	})

	return printJSON(result)
}
