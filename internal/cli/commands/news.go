package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/newsox/newsox/internal/models"
)

// NewNewsCmd creates the news command group
func NewNewsCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "news",
		Short: "Read news articles",
	}
	cmd.PersistentFlags().StringVar(&serverAlias, "server", "", "Server alias or URL")

	cmd.AddCommand(&cobra.Command{
		Use:   "today",
		Short: "Show today's news article",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNewsToday(cmd.Context(), serverAlias, WithOutput(cmd.OutOrStdout()))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <news-id>",
		Short: "Show a news article by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			newsID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid news id '%s'", args[0])
			}
			return runNewsGet(cmd.Context(), newsID, serverAlias, WithOutput(cmd.OutOrStdout()))
		},
	})

	var answers []string
	quiz := &cobra.Command{
		Use:   "quiz <news-id>",
		Short: "Show or answer the quizzes about a news article",
		Example: `  $ newsox news quiz 5
  $ newsox news quiz 5 --answer A,C,B
  $ newsox news quiz 5 --answer ,B      # answer only the second quiz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			newsID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid news id '%s'", args[0])
			}
			selected, err := parseAnswers(answers)
			if err != nil {
				return err
			}
			return runNewsQuiz(cmd.Context(), newsID, selected, serverAlias, WithOutput(cmd.OutOrStdout()))
		},
	}
	quiz.Flags().StringSliceVar(&answers, "answer", nil, "Answers in quiz order (A, B or C); leave an entry empty to skip that quiz")
	cmd.AddCommand(quiz)

	return cmd
}

func runNewsToday(ctx context.Context, serverAlias string, opts ...Option) error {
	env, err := openSession(serverAlias, opts...)
	if err != nil {
		return err
	}
	defer env.close()

	news, err := env.client.TodayNews(ctx, env.session.AccessToken())
	if err != nil {
		return err
	}

	printNews(env.out, news)
	return nil
}

func runNewsGet(ctx context.Context, newsID int64, serverAlias string, opts ...Option) error {
	env, err := openSession(serverAlias, opts...)
	if err != nil {
		return err
	}
	defer env.close()

	news, err := env.client.News(ctx, env.session.AccessToken(), newsID)
	if err != nil {
		return err
	}

	printNews(env.out, news)
	return nil
}

// parseAnswers maps positional answers to options; skipped entries are ""
func parseAnswers(raw []string) ([]models.QuizOption, error) {
	selected := make([]models.QuizOption, len(raw))
	for i, a := range raw {
		if strings.TrimSpace(a) == "" {
			continue
		}
		opt, err := models.ParseQuizOption(a)
		if err != nil {
			return nil, fmt.Errorf("answer %d: %w", i+1, err)
		}
		selected[i] = opt
	}
	return selected, nil
}

func runNewsQuiz(ctx context.Context, newsID int64, answers []models.QuizOption, serverAlias string, opts ...Option) error {
	env, err := openSession(serverAlias, opts...)
	if err != nil {
		return err
	}
	defer env.close()

	token := env.session.AccessToken()
	if len(answers) > 0 {
		st, err := env.requireLogin(ctx)
		if err != nil {
			return err
		}
		token = st.AccessToken
	}

	quizzes, err := env.client.DetailQuizzes(ctx, token, newsID)
	if err != nil {
		return err
	}
	if len(answers) > len(quizzes) {
		return fmt.Errorf("got %d answers but news %d has only %d quizzes", len(answers), newsID, len(quizzes))
	}

	if len(answers) == 0 {
		fmt.Fprintf(env.out, "Quizzes for news %d\n", newsID)
		for i := range quizzes {
			q := &quizzes[i]
			fmt.Fprintf(env.out, "\n%d. %s\n", i+1, q.Question)
			for _, opt := range []models.QuizOption{models.Option1, models.Option2, models.Option3} {
				fmt.Fprintf(env.out, "   %s) %s\n", opt.Label(), q.OptionText(opt))
			}
		}
		fmt.Fprintf(env.out, "\nAnswer with: newsox news quiz %d --answer A,B,C\n", newsID)
		return nil
	}

	correct, answered := 0, 0
	for i, answer := range answers {
		if answer == "" {
			continue
		}
		q := &quizzes[i]
		err := env.client.SubmitHistory(ctx, token, models.HistoryRequest{
			QuizID:   models.DetailQuizID(newsID, i, q),
			QuizType: models.QuizTypeDetail,
			Answer:   answer,
		})
		if err != nil {
			return err
		}
		answered++
		if answer == q.CorrectOption {
			correct++
			fmt.Fprintf(env.out, "%d. ✓ Correct\n", i+1)
		} else {
			fmt.Fprintf(env.out, "%d. ✗ Wrong, answer was %s\n", i+1, q.CorrectOption.Label())
		}
	}
	fmt.Fprintf(env.out, "\n%d of %d correct\n", correct, answered)

	// The backend awards experience per recorded answer
	st := env.session.RefreshUser(ctx)
	if st.IsAuthenticated {
		printUser(env.out, st)
	}
	return nil
}

func printNews(w io.Writer, news *models.News) {
	fmt.Fprintf(w, "[%d] %s\n", news.ID, news.Title)

	byline := news.MediaName
	if news.Journalist != "" {
		if byline != "" {
			byline += " · "
		}
		byline += news.Journalist
	}
	if byline != "" {
		fmt.Fprintf(w, "%s\n", byline)
	}
	if news.OriginCreatedDate != "" {
		fmt.Fprintf(w, "Published: %s\n", news.OriginCreatedDate)
	}

	fmt.Fprintf(w, "\n%s\n", news.Content)

	if news.OriginalNewsURL != "" {
		fmt.Fprintf(w, "\nSource: %s\n", news.OriginalNewsURL)
	}
}
