package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"mealmind/internal/store"
)

var (
	historySince string
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List logged meals",
	Long: `Lists the meal history, most of which feeds the behavioral agents on
the next analysis. Defaults to the trailing 7 days.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var tagEnergyCmd = &cobra.Command{
	Use:   "tag-energy [meal-id] [level]",
	Short: "Record how you felt after a meal",
	Long: `Attaches a post-meal energy rating (low, ok, good, high) to a logged
meal. Energy tags drive the drift, energy, and reflection agents.`,
	Args: cobra.ExactArgs(2),
	RunE: runTagEnergy,
}

func init() {
	historyCmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD), default 7 days ago")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "print raw JSON records")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	db, err := store.Open(cfg.Storage.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	since := historySince
	if since == "" {
		since = time.Now().UTC().AddDate(0, 0, -7).Format("2006-01-02")
	}
	meals, err := db.MealsSince(ctx, since)
	if err != nil {
		return err
	}

	if historyJSON {
		return printJSON(meals)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tTIME\tCONTEXT\tKCAL\tENERGY\tFOODS")
	for _, m := range meals {
		foods := ""
		if m.Vision != nil && len(m.Vision.Foods) > 0 {
			foods = m.Vision.Foods[0].Name
			if len(m.Vision.Foods) > 1 {
				foods += fmt.Sprintf(" +%d", len(m.Vision.Foods)-1)
			}
		}
		energy := m.EnergyAfter
		if energy == "" {
			energy = m.EnergyTag
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.0f\t%s\t%s\n",
			m.Date, m.Time, m.Context, m.CaloriesEstimate, energy, foods)
	}
	return w.Flush()
}

func runTagEnergy(cmd *cobra.Command, args []string) error {
	db, err := store.Open(cfg.Storage.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.TagEnergy(cmd.Context(), args[0], args[1]); err != nil {
		return err
	}
	fmt.Printf("Tagged meal %s as %s\n", args[0], args[1])
	return nil
}
