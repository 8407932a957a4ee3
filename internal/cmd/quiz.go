package cmd

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/studydash/internal/api"
	"github.com/felixgeelhaar/studydash/internal/exam"
	"github.com/felixgeelhaar/studydash/internal/tui"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Create, take and review quizzes",
}

var quizListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your quizzes",
	Example: `  studydash quiz list
  studydash quiz list --document 6f1c...`,
	Args: cobra.NoArgs,
	RunE: runQuizList,
}

var quizCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Generate a quiz from a processed document",
	Example: `  studydash quiz create --document 6f1c... --title "Chapter 3" --difficulty hard --count 10`,
	Args:    cobra.NoArgs,
	RunE:    runQuizCreate,
}

var quizTakeCmd = &cobra.Command{
	Use:   "take <quiz-id>",
	Short: "Take a quiz against the clock",
	Long: `Open an interactive attempt for a quiz.

The clock starts when the quiz has loaded and stops when you submit.
Leaving with q or ctrl+c discards the attempt; nothing is sent.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuizTake,
}

var quizResultsCmd = &cobra.Command{
	Use:   "results",
	Short: "List your graded attempts",
	Args:  cobra.NoArgs,
	RunE:  runQuizResults,
}

var quizResultCmd = &cobra.Command{
	Use:   "result <result-id>",
	Short: "Show a graded attempt with per-question feedback",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuizResult,
}

func runQuizList(cmd *cobra.Command, args []string) error {
	a, err := protected(cmd)
	if err != nil {
		return err
	}

	documentID, _ := cmd.Flags().GetString("document")
	list, err := a.client.ListQuizzes(ctxOf(cmd), documentID)
	if err != nil {
		return err
	}
	return a.print(quizListView{List: list})
}

func runQuizCreate(cmd *cobra.Command, args []string) error {
	documentID, _ := cmd.Flags().GetString("document")
	title, _ := cmd.Flags().GetString("title")
	difficulty, _ := cmd.Flags().GetString("difficulty")
	count, _ := cmd.Flags().GetInt("count")

	switch api.Difficulty(difficulty) {
	case api.DifficultyEasy, api.DifficultyMedium, api.DifficultyHard:
	default:
		return fmt.Errorf("invalid argument %q for \"--difficulty\" flag: must be easy, medium or hard", difficulty)
	}
	if count < 1 || count > 50 {
		return fmt.Errorf("invalid argument %d for \"--count\" flag: must be between 1 and 50", count)
	}

	a, err := protected(cmd)
	if err != nil {
		return err
	}

	if strings.TrimSpace(title) == "" {
		title = "Quiz"
	}
	quiz, err := a.client.CreateQuiz(ctxOf(cmd), api.QuizCreate{
		DocumentID:    documentID,
		Title:         title,
		Difficulty:    api.Difficulty(difficulty),
		QuestionCount: count,
	})
	if err != nil {
		return err
	}
	return a.print(quizView{Quiz: quiz})
}

func runQuizTake(cmd *cobra.Command, args []string) error {
	if !tui.IsTerminal(cmd.InOrStdin()) {
		return fmt.Errorf("quiz take needs an interactive terminal")
	}

	a, err := protected(cmd)
	if err != nil {
		return err
	}
	ctx := ctxOf(cmd)

	// The clock goroutine must never block on a slow UI; a dropped tick is
	// repainted by the next one.
	ticks := make(chan int, 1)
	ctrl, err := exam.Load(ctx, args[0], a.client, a.client,
		exam.WithLogger(a.logger),
		exam.WithTickHandler(func(elapsed int) {
			select {
			case ticks <- elapsed:
			default:
			}
		}))
	if err != nil {
		return err
	}
	defer ctrl.Close()

	program := tea.NewProgram(
		tui.NewExamModel(ctx, ctrl, ticks),
		tea.WithContext(ctx),
		tea.WithInput(a.in),
		tea.WithOutput(a.out),
		tea.WithAltScreen(),
	)
	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("exam screen failed: %w", err)
	}

	model, ok := final.(tui.ExamModel)
	if !ok || model.Result() == nil {
		return a.print(messageView{Message: "Attempt discarded; nothing was submitted."})
	}
	return a.print(resultView{Result: model.Result()})
}

func runQuizResults(cmd *cobra.Command, args []string) error {
	a, err := protected(cmd)
	if err != nil {
		return err
	}
	list, err := a.client.ListResults(ctxOf(cmd))
	if err != nil {
		return err
	}
	return a.print(resultListView{List: list})
}

func runQuizResult(cmd *cobra.Command, args []string) error {
	a, err := protected(cmd)
	if err != nil {
		return err
	}
	result, err := a.client.GetResult(ctxOf(cmd), args[0])
	if err != nil {
		return err
	}
	return a.print(resultView{Result: result})
}

func init() {
	quizListCmd.Flags().String("document", "", "only quizzes generated from this document")

	quizCreateCmd.Flags().String("document", "", "document to generate questions from")
	quizCreateCmd.Flags().String("title", "", "quiz title")
	quizCreateCmd.Flags().String("difficulty", string(api.DifficultyMedium), "easy, medium or hard")
	quizCreateCmd.Flags().Int("count", 5, "number of questions (1-50)")
	_ = quizCreateCmd.MarkFlagRequired("document")

	quizCmd.AddCommand(quizListCmd)
	quizCmd.AddCommand(quizCreateCmd)
	quizCmd.AddCommand(quizTakeCmd)
	quizCmd.AddCommand(quizResultsCmd)
	quizCmd.AddCommand(quizResultCmd)
	rootCmd.AddCommand(quizCmd)
}
