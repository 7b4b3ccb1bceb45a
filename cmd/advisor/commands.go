package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"routine-advisor/internal/tui"
	"routine-advisor/internal/types"
	"routine-advisor/internal/widget"
)

func newRootCmd() *cobra.Command {
	var web bool
	root := &cobra.Command{
		Use:           "advisor",
		Short:         "Pick L'Oréal products and get a routine from the beauty advisor",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&web, "web", false, "ask the gateway to add web references (overrides ADVISOR_WEB_SEARCH)")

	// withApp builds the client for one command run.
	withApp := func(fn func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			var override *bool
			if cmd.Flags().Changed("web") {
				override = &web
			}
			a, err := newApp(ctx, override)
			if err != nil {
				return err
			}
			defer a.close()
			return fn(ctx, cmd, a, args)
		}
	}

	root.AddCommand(
		newBrowseCmd(withApp),
		newProductsCmd(withApp),
		newCategoriesCmd(withApp),
		newToggleCmd(withApp),
		newClearCmd(withApp),
		newSelectedCmd(withApp),
		newRoutineCmd(withApp),
		newAskCmd(withApp),
		newDirectionCmd(withApp),
	)
	return root
}

type runFunc = func(fn func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error

func newBrowseCmd(withApp runFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Open the interactive product browser",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
			timeout := time.Duration(a.cfg.TimeoutSeconds) * time.Second
			model := tui.New(ctx, a.widget, a.log, timeout)
			_, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		}),
	}
}

func newProductsCmd(withApp runFunc) *cobra.Command {
	var category, query string
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List products, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: withApp(func(_ context.Context, cmd *cobra.Command, a *app, _ []string) error {
			if err := a.requireCatalog(); err != nil {
				return err
			}
			a.widget.SetCategory(category)
			a.widget.SetQuery(query)
			v := a.widget.Render()
			out := cmd.OutOrStdout()
			if v.ProductsPlaceholder != "" {
				fmt.Fprintln(out, v.ProductsPlaceholder)
				return nil
			}
			for _, c := range v.Cards {
				printCard(out, c)
			}
			return nil
		}),
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "only show this category")
	cmd.Flags().StringVarP(&query, "query", "q", "", "case-insensitive text search")
	return cmd
}

func printCard(out io.Writer, c widget.Card) {
	mark := "[ ]"
	if c.Selected {
		mark = "[x]"
	}
	fmt.Fprintf(out, "%s %3d  %s — %s (%s)\n", mark, c.ID, c.Name, c.Brand, c.Category)
}

func newCategoriesCmd(withApp runFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List product categories",
		Args:  cobra.NoArgs,
		RunE: withApp(func(_ context.Context, cmd *cobra.Command, a *app, _ []string) error {
			if err := a.requireCatalog(); err != nil {
				return err
			}
			for _, c := range a.widget.Render().Categories {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		}),
	}
}

func newToggleCmd(withApp runFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ID...",
		Short: "Select or unselect products by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			if err := a.requireCatalog(); err != nil {
				return err
			}
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			for _, id := range ids {
				if err := a.widget.Toggle(ctx, id); err != nil {
					return errors.Wrapf(err, "toggle %d", id)
				}
			}
			printSelected(cmd.OutOrStdout(), a.widget.Render())
			return nil
		}),
	}
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil {
			return nil, errors.Errorf("invalid product id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func newClearCmd(withApp runFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all selected products",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
			if err := a.requireCatalog(); err != nil {
				return err
			}
			if err := a.widget.Clear(ctx); err != nil {
				return errors.Wrap(err, "clear selection")
			}
			printSelected(cmd.OutOrStdout(), a.widget.Render())
			return nil
		}),
	}
}

func newSelectedCmd(withApp runFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "selected",
		Short: "Show the selected products",
		Args:  cobra.NoArgs,
		RunE: withApp(func(_ context.Context, cmd *cobra.Command, a *app, _ []string) error {
			if err := a.requireCatalog(); err != nil {
				return err
			}
			printSelected(cmd.OutOrStdout(), a.widget.Render())
			return nil
		}),
	}
}

func printSelected(out io.Writer, v widget.View) {
	if v.SelectedPlaceholder != "" {
		fmt.Fprintln(out, v.SelectedPlaceholder)
		return
	}
	for _, c := range v.Chips {
		fmt.Fprintf(out, "%3d  %s\n", c.ID, c.Name)
	}
}

func newRoutineCmd(withApp runFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "routine",
		Short: "Generate a routine for the selected products",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
			if err := a.requireCatalog(); err != nil {
				return err
			}
			a.widget.GenerateRoutine(ctx)
			printTranscript(cmd.OutOrStdout(), a.widget.Render())
			return nil
		}),
	}
}

func newAskCmd(withApp runFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "ask QUESTION...",
		Short: "Ask the advisor a skincare, haircare, makeup or fragrance question",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			a.widget.Chat(ctx, strings.Join(args, " "))
			printTranscript(cmd.OutOrStdout(), a.widget.Render())
			return nil
		}),
	}
}

func printTranscript(out io.Writer, v widget.View) {
	for _, b := range v.Transcript {
		who := "advisor"
		if b.Role == types.RoleUser {
			who = "you"
		}
		fmt.Fprintf(out, "%s: %s\n", who, b.Content)
	}
}

func newDirectionCmd(withApp runFunc) *cobra.Command {
	return &cobra.Command{
		Use:       "direction [toggle]",
		Short:     "Show or toggle the layout direction (ltr/rtl)",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"toggle"},
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			if len(args) == 1 {
				if err := a.widget.ToggleDirection(ctx); err != nil {
					return errors.Wrap(err, "save direction")
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.widget.Render().Direction)
			return nil
		}),
	}
}
