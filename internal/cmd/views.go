package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/studydash/internal/api"
	"github.com/felixgeelhaar/studydash/internal/exam"
	"github.com/felixgeelhaar/studydash/internal/ux"
)

const dateLayout = "2006-01-02 15:04"

func formatTime(ts api.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format(dateLayout)
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// messageView is a one-line confirmation
type messageView struct {
	Message string `json:"message" yaml:"message"`
}

func (v messageView) RenderText(noColor bool) string {
	return ux.NewPalette(noColor).Success.Render(v.Message)
}

// statusView reports the session state
type statusView struct {
	LoggedIn  bool       `json:"logged_in" yaml:"logged_in"`
	APIURL    string     `json:"api_url" yaml:"api_url"`
	User      *api.User  `json:"user,omitempty" yaml:"user,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
}

func (v statusView) RenderText(noColor bool) string {
	p := ux.NewPalette(noColor)
	if !v.LoggedIn {
		return p.Warning.Render("Not logged in") + "\n" +
			p.Muted.Render("Run 'studydash auth login' to sign in")
	}

	pairs := [][2]string{
		{"User", v.User.DisplayName()},
		{"Email", v.User.Email},
		{"Backend", v.APIURL},
	}
	if v.ExpiresAt != nil {
		expiry := v.ExpiresAt.Local().Format(dateLayout)
		if time.Now().After(*v.ExpiresAt) {
			expiry += " (expired)"
		}
		pairs = append(pairs, [2]string{"Token expires", expiry})
	}
	return p.Success.Render("Logged in") + "\n" + ux.KeyValues(pairs, noColor)
}

// userView shows a profile
type userView struct {
	User *api.User
}

func (v userView) Data() interface{} { return v.User }

func (v userView) RenderText(noColor bool) string {
	u := v.User
	p := ux.NewPalette(noColor)
	pairs := [][2]string{
		{"ID", u.ID},
		{"Name", orDash(u.Name)},
		{"Email", u.Email},
		{"Member since", formatTime(u.CreatedAt)},
		{"Documents", strconv.Itoa(u.TotalDocuments)},
		{"Quizzes taken", strconv.Itoa(u.TotalQuizzesTaken)},
		{"Correct answers", fmt.Sprintf("%d/%d", u.TotalCorrectAnswers, u.TotalQuestionsAnswered)},
		{"Study streak", fmt.Sprintf("%d day(s)", u.StudyStreak)},
	}
	if u.AvatarURL != nil {
		pairs = append(pairs, [2]string{"Avatar", *u.AvatarURL})
	}
	return p.Title.Render(u.DisplayName()) + "\n" + ux.KeyValues(pairs, noColor)
}

// quizListView lists quizzes
type quizListView struct {
	List *api.QuizList
}

func (v quizListView) Data() interface{} { return v.List }

func (v quizListView) RenderText(noColor bool) string {
	if len(v.List.Quizzes) == 0 {
		return ux.NewPalette(noColor).Muted.Render("No quizzes yet. Create one with 'studydash quiz create'.")
	}
	rows := make([][]string, 0, len(v.List.Quizzes))
	for _, q := range v.List.Quizzes {
		rows = append(rows, []string{q.ID, q.Title, string(q.Difficulty), strconv.Itoa(q.QuestionCount), formatTime(q.CreatedAt)})
	}
	return ux.Table([]string{"ID", "Title", "Difficulty", "Questions", "Created"}, rows, noColor)
}

// quizView shows one quiz without its questions
type quizView struct {
	Quiz *api.Quiz
}

func (v quizView) Data() interface{} { return v.Quiz }

func (v quizView) RenderText(noColor bool) string {
	q := v.Quiz
	p := ux.NewPalette(noColor)
	pairs := [][2]string{
		{"ID", q.ID},
		{"Document", orDash(q.DocumentID)},
		{"Difficulty", string(q.Difficulty)},
		{"Questions", strconv.Itoa(q.QuestionCount)},
		{"Created", formatTime(q.CreatedAt)},
	}
	return p.Title.Render(q.Title) + "\n" + ux.KeyValues(pairs, noColor) + "\n\n" +
		p.Muted.Render(fmt.Sprintf("Take it with 'studydash quiz take %s'", q.ID))
}

// resultListView lists past attempts
type resultListView struct {
	List *api.ExamResultList
}

func (v resultListView) Data() interface{} { return v.List }

func (v resultListView) RenderText(noColor bool) string {
	if len(v.List.Results) == 0 {
		return ux.NewPalette(noColor).Muted.Render("No results yet. Take a quiz with 'studydash quiz take <id>'.")
	}
	rows := make([][]string, 0, len(v.List.Results))
	for _, r := range v.List.Results {
		rows = append(rows, []string{
			r.ID,
			r.QuizTitle,
			fmt.Sprintf("%.0f%%", r.ScorePercentage),
			fmt.Sprintf("%d/%d", r.CorrectAnswers, r.TotalQuestions),
			exam.FormatElapsed(r.TimeTaken),
			formatTime(r.CompletedAt),
		})
	}
	return ux.Table([]string{"ID", "Quiz", "Score", "Correct", "Time", "Completed"}, rows, noColor)
}

// resultView shows one graded attempt with per-question feedback
type resultView struct {
	Result *api.ExamResult
}

func (v resultView) Data() interface{} { return v.Result }

func (v resultView) RenderText(noColor bool) string {
	r := v.Result
	p := ux.NewPalette(noColor)

	score := fmt.Sprintf("%.0f%%", r.ScorePercentage)
	switch {
	case r.ScorePercentage >= 80:
		score = p.Success.Render(score)
	case r.ScorePercentage >= 50:
		score = p.Warning.Render(score)
	default:
		score = p.Danger.Render(score)
	}

	var b strings.Builder
	b.WriteString(p.Title.Render(orDash(r.QuizTitle)))
	b.WriteString("\n")
	b.WriteString(ux.KeyValues([][2]string{
		{"Score", score},
		{"Correct", fmt.Sprintf("%d of %d", r.CorrectAnswers, r.TotalQuestions)},
		{"Time", exam.FormatElapsed(r.TimeTaken)},
		{"Difficulty", orDash(string(r.Difficulty))},
		{"Completed", formatTime(r.CompletedAt)},
	}, noColor))

	if len(r.Answers) > 0 {
		b.WriteString("\n")
		for i, a := range r.Answers {
			mark := p.Success.Render("✓")
			if !a.IsCorrect {
				mark = p.Danger.Render("✗")
			}
			fmt.Fprintf(&b, "\n%s %d. %s", mark, i+1, a.QuestionText)
			if !a.IsCorrect {
				fmt.Fprintf(&b, "\n    your answer: %s, correct: %s", orDash(a.SelectedAnswer), a.CorrectAnswer)
			}
			if a.Explanation != "" && !a.IsCorrect {
				b.WriteString("\n    " + p.Muted.Render(a.Explanation))
			}
		}
	}

	if len(r.WeakTopics) > 0 {
		b.WriteString("\n\n")
		b.WriteString(p.Label.Render("Review:"))
		b.WriteString(" " + strings.Join(r.WeakTopics, ", "))
	}
	return b.String()
}

// documentListView lists documents
type documentListView struct {
	List *api.DocumentList
}

func (v documentListView) Data() interface{} { return v.List }

func (v documentListView) RenderText(noColor bool) string {
	p := ux.NewPalette(noColor)
	if len(v.List.Documents) == 0 {
		return p.Muted.Render("No documents. Upload one from the web dashboard.")
	}
	rows := make([][]string, 0, len(v.List.Documents))
	for _, d := range v.List.Documents {
		rows = append(rows, []string{d.ID, d.Title, d.FileType, formatSize(d.FileSize), string(d.ProcessingStatus), formatTime(d.CreatedAt)})
	}
	footer := p.Muted.Render(fmt.Sprintf("page %d, %d of %d document(s)", v.List.Page, len(v.List.Documents), v.List.Total))
	return ux.Table([]string{"ID", "Title", "Type", "Size", "Status", "Uploaded"}, rows, noColor) + "\n" + footer
}

// documentView shows a document with its generated study material
type documentView struct {
	Document *api.Document
}

func (v documentView) Data() interface{} { return v.Document }

func (v documentView) RenderText(noColor bool) string {
	d := v.Document
	p := ux.NewPalette(noColor)

	var b strings.Builder
	b.WriteString(p.Title.Render(d.Title))
	b.WriteString("\n")
	b.WriteString(ux.KeyValues([][2]string{
		{"ID", d.ID},
		{"Type", d.FileType},
		{"Size", formatSize(d.FileSize)},
		{"Pages", strconv.Itoa(d.PageCount)},
		{"Status", statusLabel(p, d.ProcessingStatus)},
		{"Uploaded", formatTime(d.CreatedAt)},
	}, noColor))

	if d.Summary != nil && *d.Summary != "" {
		b.WriteString("\n\n" + p.Label.Render("Summary") + "\n" + *d.Summary)
	}
	if d.EasyExplanation != nil && *d.EasyExplanation != "" {
		b.WriteString("\n\n" + p.Label.Render("In plain words") + "\n" + *d.EasyExplanation)
	}
	if len(d.KeyConcepts) > 0 {
		b.WriteString("\n\n" + p.Label.Render("Key concepts"))
		for _, c := range d.KeyConcepts {
			b.WriteString("\n  • " + c)
		}
	}
	return b.String()
}

func statusLabel(p ux.Palette, s api.ProcessingStatus) string {
	switch s {
	case api.StatusCompleted:
		return p.Success.Render(string(s))
	case api.StatusFailed:
		return p.Danger.Render(string(s))
	default:
		return p.Warning.Render(string(s))
	}
}

// progressView shows the study overview
type progressView struct {
	Overview *api.ProgressOverview
}

func (v progressView) Data() interface{} { return v.Overview }

func (v progressView) RenderText(noColor bool) string {
	o := v.Overview
	p := ux.NewPalette(noColor)

	var b strings.Builder
	b.WriteString(p.Title.Render("Study progress"))
	b.WriteString("\n")
	b.WriteString(ux.KeyValues([][2]string{
		{"Documents", strconv.Itoa(o.TotalDocuments)},
		{"Quizzes taken", strconv.Itoa(o.TotalQuizzesTaken)},
		{"Average score", fmt.Sprintf("%.1f%%", o.AverageScore)},
		{"Study streak", fmt.Sprintf("%d day(s)", o.StudyStreak)},
	}, noColor))

	if len(o.RecentActivity) > 0 {
		rows := make([][]string, 0, len(o.RecentActivity))
		for _, d := range o.RecentActivity {
			rows = append(rows, []string{
				d.Date,
				strconv.Itoa(d.QuizzesTaken),
				fmt.Sprintf("%d/%d", d.CorrectAnswers, d.QuestionsAnswered),
				strconv.Itoa(d.DocumentsUploaded),
			})
		}
		b.WriteString("\n\n")
		b.WriteString(ux.Table([]string{"Date", "Quizzes", "Correct", "Uploads"}, rows, noColor))
	}
	return b.String()
}

// detailedProgressView shows the full learning history
type detailedProgressView struct {
	Progress *api.LearningProgress
}

func (v detailedProgressView) Data() interface{} { return v.Progress }

func (v detailedProgressView) RenderText(noColor bool) string {
	lp := v.Progress
	p := ux.NewPalette(noColor)

	var b strings.Builder
	b.WriteString(p.Title.Render("Learning progress"))
	b.WriteString("\n")
	b.WriteString(ux.KeyValues([][2]string{
		{"Documents", strconv.Itoa(lp.TotalDocuments)},
		{"Quizzes taken", strconv.Itoa(lp.TotalQuizzes)},
		{"Average score", fmt.Sprintf("%.1f%%", lp.AverageScore)},
		{"Study time", fmt.Sprintf("%d min", lp.TotalStudyTime)},
		{"Current streak", fmt.Sprintf("%d day(s)", lp.CurrentStreak)},
		{"Best streak", fmt.Sprintf("%d day(s)", lp.BestStreak)},
		{"Updated", formatTime(lp.UpdatedAt)},
	}, noColor))

	if len(lp.TopicProgress) > 0 {
		rows := make([][]string, 0, len(lp.TopicProgress))
		for _, tp := range lp.TopicProgress {
			rows = append(rows, []string{
				tp.Topic,
				fmt.Sprintf("%d/%d", tp.CorrectAnswers, tp.TotalQuestions),
				fmt.Sprintf("%.0f%%", tp.MasteryLevel),
			})
		}
		b.WriteString("\n\n")
		b.WriteString(p.Label.Render("Topics"))
		b.WriteString("\n")
		b.WriteString(ux.Table([]string{"Topic", "Correct", "Mastery"}, rows, noColor))
	}

	if len(lp.DailyStats) > 0 {
		rows := make([][]string, 0, len(lp.DailyStats))
		for _, d := range lp.DailyStats {
			rows = append(rows, []string{
				d.Date,
				strconv.Itoa(d.QuizzesTaken),
				fmt.Sprintf("%d/%d", d.CorrectAnswers, d.QuestionsAnswered),
				strconv.Itoa(d.DocumentsUploaded),
				fmt.Sprintf("%d min", d.StudyTime),
			})
		}
		b.WriteString("\n\n")
		b.WriteString(p.Label.Render("Daily activity"))
		b.WriteString("\n")
		b.WriteString(ux.Table([]string{"Date", "Quizzes", "Correct", "Uploads", "Time"}, rows, noColor))
	}

	if len(lp.Achievements) > 0 {
		rows := make([][]string, 0, len(lp.Achievements))
		for _, ach := range lp.Achievements {
			rows = append(rows, []string{ach.Title, orDash(ach.Description), formatTime(ach.EarnedAt)})
		}
		b.WriteString("\n\n")
		b.WriteString(p.Label.Render("Achievements"))
		b.WriteString("\n")
		b.WriteString(ux.Table([]string{"Achievement", "Description", "Earned"}, rows, noColor))
	}
	return b.String()
}
