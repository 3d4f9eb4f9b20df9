package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/baby-pool/internal/application"
	"github.com/example/baby-pool/internal/selection"
	"github.com/example/baby-pool/internal/slots"
)

func (c cli) settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and change pool settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print public settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			values, err := a.settings.Public(cmd.Context())
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(values))
			for k := range values {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", k, values[k])
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get KEY",
		Short: "Print one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			value, err := a.settings.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Change one setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.settings.Set(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s updated\n", args[0])
			return nil
		},
	})

	var password string
	passwordCmd := &cobra.Command{
		Use:   "password",
		Short: "Replace the site password",
		Long:  "Replace the site password. Without --password the first line of stdin is used.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				line, err := readLine(cmd.InOrStdin())
				if err != nil {
					return err
				}
				password = line
			}

			a, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.settings.SetSitePassword(cmd.Context(), password); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "site password updated")
			return nil
		},
	}
	passwordCmd.Flags().StringVar(&password, "password", "", "new site password")
	cmd.AddCommand(passwordCmd)

	return cmd
}

func readLine(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", errors.New("no password given")
	}
	return strings.TrimRight(scanner.Text(), "\r"), nil
}

func (c cli) guessesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guesses",
		Short: "Inspect stored guesses",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show ID",
		Short: "Print one guess, including its contact address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id < 1 {
				return fmt.Errorf("invalid guess id %q", args[0])
			}

			a, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			g, err := a.guesses.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "id: %d\n", g.ID)
			fmt.Fprintf(out, "name: %s\n", g.Name)
			if g.Email != "" {
				fmt.Fprintf(out, "email: %s\n", g.Email)
			}
			fmt.Fprintf(out, "gender: %s\n", g.Gender)
			fmt.Fprintf(out, "date: %s\n", g.BirthDate)
			fmt.Fprintf(out, "time: %s\n", strings.Join(g.Time.Strings(), ", "))
			fmt.Fprintf(out, "weight: %s\n", g.Weight)
			fmt.Fprintf(out, "created: %s\n", g.CreatedAt.UTC().Format(time.RFC3339))
			return nil
		},
	})
	return cmd
}

func (c cli) sessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage site sessions",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Delete expired sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			removed, err := a.auth.PurgeExpired(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired sessions\n", removed)
			return nil
		},
	})
	return cmd
}

func (c cli) convertCmd() *cobra.Command {
	var (
		lbs, oz int
		kg      float64
	)
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a birth weight between lb/oz and kg",
		Example: `  babypool convert --lbs 7 --oz 8
  babypool convert --kg 3.4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pounds, ounces, kilograms := weightFlags(cmd, lbs, oz, kg)
			imperial := pounds != nil || ounces != nil
			if imperial == (kilograms != nil) {
				return errors.New("give either --lbs/--oz or --kg")
			}
			w, err := application.ConvertWeight(pounds, ounces, kilograms)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), w.String())
			return nil
		},
	}
	addWeightFlags(cmd, &lbs, &oz, &kg)
	return cmd
}

func addWeightFlags(cmd *cobra.Command, lbs, oz *int, kg *float64) {
	cmd.Flags().IntVar(lbs, "lbs", 0, "weight in pounds")
	cmd.Flags().IntVar(oz, "oz", 0, "remaining ounces, 0 to 15")
	cmd.Flags().Float64Var(kg, "kg", 0, "weight in kilograms")
}

// weightFlags returns pointers only for the flags that were set.
func weightFlags(cmd *cobra.Command, lbs, oz int, kg float64) (*int, *int, *float64) {
	var pounds, ounces *int
	var kilograms *float64
	if cmd.Flags().Changed("lbs") {
		pounds = &lbs
	}
	if cmd.Flags().Changed("oz") {
		ounces = &oz
	}
	if cmd.Flags().Changed("kg") {
		kilograms = &kg
	}
	return pounds, ounces, kilograms
}

func (c cli) pickCmd() *cobra.Command {
	var (
		date, name, email, gender string
		times                     []string
		submit                    bool
		lbs, oz                   int
		kg                        float64
	)
	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Select birth slots the way the calendar does and optionally submit them",
		Example: `  babypool pick --date 2025-12-20 --slot 09:00 --slot 09:30
  babypool pick --date 2025-12-20 --slot 09:00 --submit --name Alice --gender girl --lbs 7 --oz 8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			settings, err := a.settings.Snapshot(ctx)
			if err != nil {
				return err
			}
			snapshot, err := a.calendar.Events(ctx)
			if err != nil {
				return err
			}
			day, err := slots.ParseDate(date)
			if err != nil {
				return err
			}

			now := c.now
			if now == nil {
				now = time.Now
			}
			sel := selection.New(settings.Rules, slots.Today(now(), a.cfg.Location()), snapshot)
			out := cmd.OutOrStdout()
			for _, raw := range times {
				tod, err := slots.ParseTimeOfDay(raw)
				if err != nil {
					return err
				}
				slot := slots.Slot{Date: day, Time: tod}
				if _, err := sel.Toggle(slot); err != nil {
					return fmt.Errorf("select %s: %w", slot, err)
				}
				if taken := sel.Occupancy(slot); len(taken) > 0 {
					fmt.Fprintf(out, "%s already picked by guesses %v\n", slot, taken)
				}
			}

			confirmation, err := sel.Confirm()
			if err != nil {
				return err
			}
			spec, err := confirmation.TimeSpec()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "selected %s %s\n", confirmation.Date, strings.Join(spec.Strings(), ","))

			if !submit {
				return nil
			}

			pounds, ounces, kilograms := weightFlags(cmd, lbs, oz, kg)
			input := application.GuessInput{
				Name:      name,
				Email:     email,
				Gender:    gender,
				BirthDate: confirmation.Date.String(),
				Pounds:    pounds,
				Ounces:    ounces,
				Kilograms: kilograms,
			}
			if t, ok := spec.SingleTime(); ok {
				input.BirthTime = t.String()
			} else {
				input.TimeBlocks = spec.Strings()
			}

			result, err := a.guesses.Submit(ctx, input)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "guess %d stored\n", result.ID)
			if len(result.Duplicates) > 0 {
				fmt.Fprintf(out, "same date and time as guesses %v\n", result.Duplicates)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "birth date, YYYY-MM-DD")
	cmd.Flags().StringArrayVar(&times, "slot", nil, "time slot HH:MM; repeat for a block")
	cmd.Flags().BoolVar(&submit, "submit", false, "store the selection as a guess")
	cmd.Flags().StringVar(&name, "name", "", "guesser name")
	cmd.Flags().StringVar(&email, "email", "", "optional contact email")
	cmd.Flags().StringVar(&gender, "gender", "", "boy, girl or surprise")
	addWeightFlags(cmd, &lbs, &oz, &kg)
	_ = cmd.MarkFlagRequired("date")
	return cmd
}
