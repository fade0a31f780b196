package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/newsox/newsox/internal/models"
)

// NewOXCmd creates the ox command group
func NewOXCmd() *cobra.Command {
	var serverAlias, category string

	cmd := &cobra.Command{
		Use:   "ox",
		Short: "Real-or-fake headline quizzes",
	}
	cmd.PersistentFlags().StringVar(&serverAlias, "server", "", "Server alias or URL")

	list := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List OX quizzes",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var c models.NewsCategory
			if category != "" {
				var err error
				c, err = models.ParseNewsCategory(category)
				if err != nil {
					return err
				}
			}
			return runOXList(cmd.Context(), c, serverAlias, WithOutput(cmd.OutOrStdout()))
		},
	}
	list.Flags().StringVar(&category, "category", "", "Only show quizzes of this category (politics, economy, society, culture, it)")
	cmd.AddCommand(list)

	return cmd
}

func runOXList(ctx context.Context, category models.NewsCategory, serverAlias string, opts ...Option) error {
	env, err := openSession(serverAlias, opts...)
	if err != nil {
		return err
	}
	defer env.close()

	quizzes, err := env.client.FactQuizzes(ctx, env.session.AccessToken(), category)
	if err != nil {
		return err
	}

	if len(quizzes) == 0 {
		fmt.Fprintln(env.out, "No OX quizzes found.")
		return nil
	}

	fmt.Fprintf(env.out, "OX quizzes on %s (%s):\n\n", env.server.Alias, env.server.URL)

	w := tabwriter.NewWriter(env.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCATEGORY\tQUESTION")
	fmt.Fprintln(w, "──\t────────\t────────")

	for _, q := range quizzes {
		fmt.Fprintf(w, "%d\t%s\t%s\n", q.ID, q.NewsCategory, q.Question)
	}

	return w.Flush()
}
