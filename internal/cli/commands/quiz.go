package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/newsox/newsox/internal/models"
)

// NewQuizCmd creates the quiz command group
func NewQuizCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Solve the daily news quizzes",
	}
	cmd.PersistentFlags().StringVar(&serverAlias, "server", "", "Server alias or URL")

	cmd.AddCommand(&cobra.Command{
		Use:   "today",
		Short: "Show the quizzes for today's news",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuizToday(cmd.Context(), serverAlias, WithOutput(cmd.OutOrStdout()))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "submit <quiz-id> <option>",
		Short: "Answer a daily quiz with option A, B or C",
		Example: `  $ newsox quiz submit 12 B
  $ newsox quiz submit 12 OPTION2`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			quizID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid quiz id '%s'", args[0])
			}
			option, err := models.ParseQuizOption(args[1])
			if err != nil {
				return err
			}
			return runQuizSubmit(cmd.Context(), quizID, option, serverAlias, WithOutput(cmd.OutOrStdout()))
		},
	})

	return cmd
}

func runQuizToday(ctx context.Context, serverAlias string, opts ...Option) error {
	env, err := openSession(serverAlias, opts...)
	if err != nil {
		return err
	}
	defer env.close()

	st, err := env.requireLogin(ctx)
	if err != nil {
		return err
	}

	news, err := env.client.TodayNews(ctx, st.AccessToken)
	if err != nil {
		return err
	}

	quizzes, err := env.client.DailyQuizzes(ctx, st.AccessToken, news.ID)
	if err != nil {
		return err
	}

	fmt.Fprintf(env.out, "Quizzes for [%d] %s\n", news.ID, news.Title)
	if len(quizzes) == 0 {
		fmt.Fprintln(env.out, "\nNo quizzes for today's news yet.")
		return nil
	}

	for i := range quizzes {
		q := &quizzes[i]
		fmt.Fprintf(env.out, "\n#%d %s\n", q.Quiz.ID, q.Quiz.Question)
		for _, opt := range []models.QuizOption{models.Option1, models.Option2, models.Option3} {
			marker := " "
			if q.Answer != nil && *q.Answer == opt {
				marker = "*"
			}
			fmt.Fprintf(env.out, "  %s %s) %s\n", marker, opt.Label(), q.Quiz.OptionText(opt))
		}
		if q.Solved() {
			if q.Correct {
				fmt.Fprintf(env.out, "  ✓ Correct (+%d exp)\n", q.GainExp)
			} else {
				fmt.Fprintf(env.out, "  ✗ Wrong, answer was %s\n", q.Quiz.CorrectOption.Label())
			}
		}
	}

	fmt.Fprintln(env.out, "\nAnswer with: newsox quiz submit <quiz-id> <A|B|C>")
	return nil
}

func runQuizSubmit(ctx context.Context, quizID int64, option models.QuizOption, serverAlias string, opts ...Option) error {
	env, err := openSession(serverAlias, opts...)
	if err != nil {
		return err
	}
	defer env.close()

	st, err := env.requireLogin(ctx)
	if err != nil {
		return err
	}

	answer, err := env.client.SubmitDailyQuiz(ctx, st.AccessToken, quizID, option)
	if err != nil {
		return err
	}

	if answer.IsCorrect {
		fmt.Fprintf(env.out, "✓ Correct! +%d exp\n", answer.GainExp)
	} else {
		fmt.Fprintf(env.out, "✗ Wrong. The answer was %s\n", answer.CorrectOption.Label())
	}

	// Level and experience change on the server after grading
	st = env.session.RefreshUser(ctx)
	if st.IsAuthenticated {
		printUser(env.out, st)
	}
	return nil
}
