package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/2beens/gymlog/internal/gymlog/remote"
	"github.com/2beens/gymlog/internal/gymlog/router"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	var a *app

	cmd := &cobra.Command{
		Use:           "gymlog",
		Short:         "Drive the workout log pages from the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			a, err = newApp(opts)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a != nil {
				a.close(opts.dumpMetrics)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.env, "env", "development", "environment [prod | production | dev | development]")
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "./config.toml", "path for the TOML config file")
	cmd.PersistentFlags().StringVar(&opts.backendURL, "backend", "", "workout backend URL, overrides the config")
	cmd.PersistentFlags().BoolVar(&opts.dumpMetrics, "metrics", false, "print the collected metrics to stderr on exit")

	appFn := func() *app { return a }
	addDay(cmd, appFn)
	addHistory(cmd, appFn)
	addLog(cmd, appFn)
	addEdit(cmd, appFn, "edit-workout", remote.FormEditWorkout, router.RoleEditWorkout)
	addEdit(cmd, appFn, "edit-exercise", remote.FormEditExercise, router.RoleEditExercise)
	addState(cmd, appFn)
	return cmd
}

func addDay(topLevel *cobra.Command, a func() *app) {
	var showHTML bool

	cmd := &cobra.Command{
		Use:     "day DATE",
		Short:   "show the records logged on a day",
		Example: "gymlog day 2024-03-01",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := a().page
			err := p.Dispatch(cmd.Context(), router.Event{
				Type:   router.Click,
				Target: router.Target{Role: router.RoleCalendarDay, ID: args[0]},
			})
			if err != nil {
				return err
			}
			if showHTML {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), p.Modal().Content().HTML)
				return err
			}
			printModal(cmd.OutOrStdout(), p.Modal().Content().HTML)
			return nil
		},
	}
	cmd.Flags().BoolVar(&showHTML, "html", false, "print the popup markup")
	topLevel.AddCommand(cmd)
}

func addHistory(topLevel *cobra.Command, a func() *app) {
	var muscle, exercise, shortcut string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "list the workout history, optionally filtered",
		Example: `
gymlog history --muscle legs
gymlog history --shortcut "Bench Press"
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p := a().page
			if err := p.Load(ctx); err != nil {
				return err
			}

			var events []router.Event
			if cmd.Flags().Changed("muscle") {
				events = append(events, changeEvent(router.RoleMuscleFilter, "", muscle))
			}
			if cmd.Flags().Changed("exercise") {
				events = append(events, changeEvent(router.RoleExerciseFilter, "", exercise))
			}
			if shortcut != "" {
				events = append(events, router.Event{
					Type:   router.Click,
					Target: router.Target{Role: router.RoleExerciseShortcut, Text: shortcut},
				})
			}
			if err := dispatchAll(ctx, p.Dispatch, events); err != nil {
				return err
			}

			printRows(cmd.OutOrStdout(), p.VisibleRows())
			return nil
		},
	}
	cmd.Flags().StringVar(&muscle, "muscle", "", "muscle group filter")
	cmd.Flags().StringVar(&exercise, "exercise", "", "exercise filter")
	cmd.Flags().StringVar(&shortcut, "shortcut", "", "exercise shortcut label")
	topLevel.AddCommand(cmd)
}

func addLog(topLevel *cobra.Command, a func() *app) {
	var date string
	var entryFlags []string

	cmd := &cobra.Command{
		Use:   "log",
		Short: "log a workout through the log form",
		Long: "Opens the log form, fills one entry row per --entry and submits it.\n" +
			"An entry is EXERCISE_ID[:field=value...]; the exercise defaults are\n" +
			"filled in first and the given fields override them.",
		Example: `
gymlog log --entry 3 --entry 7:weight=60:reps=8
gymlog log --date 2024-03-01 --entry 3:sets=5
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(entryFlags) == 0 {
				return errors.New("at least one --entry is needed")
			}
			planned := make([]plannedEntry, 0, len(entryFlags))
			for _, raw := range entryFlags {
				entry, err := parseEntry(raw)
				if err != nil {
					return err
				}
				planned = append(planned, entry)
			}

			ctx := cmd.Context()
			p := a().page
			if err := p.Load(ctx); err != nil {
				return err
			}
			err := p.Dispatch(ctx, router.Event{
				Type:   router.Click,
				Target: router.Target{Role: router.RoleOpenLogForm},
			})
			if err != nil {
				return err
			}
			if date != "" {
				err := p.Dispatch(ctx, fieldEvent(remote.FormLog, "", remote.FieldDate, date))
				if err != nil {
					return err
				}
			}

			for i, entry := range planned {
				if i > 0 {
					err := p.Dispatch(ctx, router.Event{
						Type:   router.Click,
						Target: router.Target{Role: router.RoleAddEntry, ID: string(remote.FormLog)},
					})
					if err != nil {
						return err
					}
				}
				rowID, err := lastEntryRow(p.Loader())
				if err != nil {
					return err
				}

				events := []router.Event{changeEvent(router.RoleExerciseSelect, rowID, entry.exerciseID)}
				for _, f := range entry.fields {
					events = append(events, fieldEvent(remote.FormLog, rowID, f[0], f[1]))
				}
				if err := dispatchAll(ctx, p.Dispatch, events); err != nil {
					return err
				}
			}

			err = p.Dispatch(ctx, router.Event{
				Type:   router.Submit,
				Target: router.Target{Role: router.RoleFormSubmit, ID: string(remote.FormLog)},
			})
			if err != nil {
				return err
			}

			printRows(cmd.OutOrStdout(), p.VisibleRows())
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "workout date, today when empty")
	cmd.Flags().StringArrayVar(&entryFlags, "entry", nil, "entry row EXERCISE_ID[:field=value...]")
	topLevel.AddCommand(cmd)
}

func addEdit(topLevel *cobra.Command, a func() *app, use string, kind remote.FormKind, trigger router.Role) {
	var sets []string

	cmd := &cobra.Command{
		Use:     use + " ID",
		Short:   "load the " + strings.ReplaceAll(string(kind), "_", " ") + " form, change fields and submit it",
		Example: fmt.Sprintf("gymlog %s 42 --set weight=62.5 --set reps=6", use),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := make([][2]string, 0, len(sets))
			for _, s := range sets {
				name, value, ok := strings.Cut(s, "=")
				if !ok || name == "" {
					return fmt.Errorf("invalid --set %q, expected name=value", s)
				}
				fields = append(fields, [2]string{name, value})
			}

			ctx := cmd.Context()
			p := a().page
			events := []router.Event{{
				Type:   router.Click,
				Target: router.Target{Role: trigger, ID: args[0]},
			}}
			for _, f := range fields {
				events = append(events, fieldEvent(kind, "", f[0], f[1]))
			}
			if len(fields) == 0 {
				if err := dispatchAll(ctx, p.Dispatch, events); err != nil {
					return err
				}
				printModal(cmd.OutOrStdout(), p.Modal().Content().HTML)
				return nil
			}
			events = append(events, router.Event{
				Type:   router.Submit,
				Target: router.Target{Role: router.RoleFormSubmit, ID: string(kind)},
			})
			return dispatchAll(ctx, p.Dispatch, events)
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field change name=value; without any the form is only shown")
	topLevel.AddCommand(cmd)
}

func addState(topLevel *cobra.Command, a func() *app) {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "mount the history page and print the client state as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := a().page
			if err := p.Load(cmd.Context()); err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(p.State())
		},
	}
	topLevel.AddCommand(cmd)
}

func changeEvent(role router.Role, id, value string) router.Event {
	return router.Event{
		Type:   router.Change,
		Target: router.Target{Role: role, ID: id},
		Value:  value,
	}
}

func fieldEvent(kind remote.FormKind, rowID, name, value string) router.Event {
	data := map[string]string{"name": name}
	if rowID != "" {
		data["entry"] = rowID
	}
	return router.Event{
		Type:   router.Change,
		Target: router.Target{Role: router.RoleFormField, ID: string(kind), Data: data},
		Value:  value,
	}
}

func dispatchAll(ctx context.Context, dispatch func(context.Context, router.Event) error, events []router.Event) error {
	for _, ev := range events {
		if err := dispatch(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

func lastEntryRow(l *remote.Loader) (string, error) {
	st := l.ActiveState()
	if st == nil || len(st.Entries) == 0 {
		return "", errors.New("log form has no entry rows")
	}
	return st.Entries[len(st.Entries)-1].ID, nil
}

type plannedEntry struct {
	exerciseID string
	fields     [][2]string
}

func parseEntry(raw string) (plannedEntry, error) {
	parts := strings.Split(raw, ":")
	entry := plannedEntry{exerciseID: strings.TrimSpace(parts[0])}
	if entry.exerciseID == "" {
		return plannedEntry{}, fmt.Errorf("invalid entry %q: missing exercise id", raw)
	}
	for _, part := range parts[1:] {
		name, value, ok := strings.Cut(part, "=")
		if !ok || name == "" {
			return plannedEntry{}, fmt.Errorf("invalid entry %q: expected field=value, got %q", raw, part)
		}
		entry.fields = append(entry.fields, [2]string{name, value})
	}
	return entry, nil
}
