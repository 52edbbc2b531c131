package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"

	"github.com/rezakmal/insightify/internal/models"
	"github.com/rezakmal/insightify/internal/repositories"
)

type quizService struct {
	repo     repositories.Repository
	logger   *slog.Logger
	activity ActivityService
}

func NewQuizService(repo repositories.Repository, logger *slog.Logger, activity ActivityService) QuizService {
	return &quizService{
		repo:     repo,
		logger:   logger,
		activity: activity,
	}
}

func (s *quizService) Start(ctx context.Context, moduleID, userID, courseID string) (*QuizView, error) {
	quiz, err := s.repo.Quiz().GetByModule(ctx, nil, moduleID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to load quiz: %w", err)
	}

	view := &QuizView{
		Questions:       make([]QuizQuestionView, 0, len(quiz.Questions)),
		TotalQuestions:  len(quiz.Questions),
		MaximumDuration: quiz.MaximumDuration,
		DeadlineAt:      quiz.DeadlineAt,
	}
	for _, q := range quiz.Questions {
		qv := QuizQuestionView{
			QuestionID: q.ID,
			Question:   q.Text,
		}
		for i, opt := range q.Options {
			qv.Options = append(qv.Options, QuizOptionView{
				Label: string(rune('A' + i)),
				Text:  opt,
			})
		}
		view.Questions = append(view.Questions, qv)
	}

	// The start event anchors duration measurement, so it only exists for
	// authenticated starts.
	if userID != "" {
		req := &ActivityRecordRequest{ModuleID: &moduleID, Type: models.ActivityQuizStart}
		if courseID != "" {
			req.CourseID = &courseID
		}
		if _, err := s.activity.Record(ctx, userID, req); err != nil {
			return nil, err
		}
	}

	return view, nil
}

// Submit scores the answers against the full question count. Answers
// referencing unknown questions or carrying labels outside A-D are
// skipped, never surfaced as errors. The course context is required so
// the QuizResult row and the enrollment's embedded history always move
// together.
func (s *quizService) Submit(ctx context.Context, moduleID, userID, courseID string, answers []QuizAnswerRequest) (*ScoreResult, error) {
	if courseID == "" {
		return nil, NewValidationError("courseId", "courseId is required", nil)
	}
	if len(answers) == 0 {
		return nil, ErrNoAnswers
	}

	quiz, err := s.repo.Quiz().GetByModule(ctx, nil, moduleID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to load quiz: %w", err)
	}

	answerKey := make(map[string]int, len(quiz.Questions))
	for _, q := range quiz.Questions {
		answerKey[q.ID] = q.Answer
	}

	correct := 0
	for _, answer := range answers {
		expected, ok := answerKey[answer.QuestionID]
		if !ok {
			continue
		}
		if len(answer.SelectedOption) == 0 {
			continue
		}
		selected := int(answer.SelectedOption[0]) - 'A'
		if selected < 0 || selected >= models.QuizOptionCount {
			continue
		}
		if selected == expected {
			correct++
		}
	}

	total := len(quiz.Questions)
	score := roundPercentage(correct, total)
	passed := score >= models.PassThreshold

	result := &models.QuizResult{
		UserID:         userID,
		ModuleID:       moduleID,
		QuizID:         quiz.ID,
		Score:          score,
		TotalQuestions: total,
		Passed:         passed,
		Duration:       s.attemptDuration(ctx, userID, moduleID, courseID),
	}
	if err := s.repo.QuizResult().Create(ctx, nil, result); err != nil {
		return nil, fmt.Errorf("failed to record quiz result: %w", err)
	}

	// Second per-attempt history: the enrollment's embedded log.
	attempt := models.QuizAttemptSummary{
		ModuleID:  moduleID,
		Correct:   correct,
		Total:     total,
		Score:     score,
		Passed:    passed,
		Timestamp: result.Timestamp,
	}
	if err := s.repo.Enrollment().AppendQuizAttempt(ctx, nil, userID, courseID, attempt); err != nil {
		return nil, fmt.Errorf("failed to append quiz attempt: %w", err)
	}

	if _, err := s.activity.Record(ctx, userID, &ActivityRecordRequest{
		CourseID: &courseID,
		ModuleID: &moduleID,
		Type:     models.ActivityQuizSubmit,
		Metadata: map[string]interface{}{"score": score, "passed": passed},
	}); err != nil {
		return nil, err
	}

	s.logger.Info("Quiz submitted",
		"user_id", userID,
		"module_id", moduleID,
		"score", score,
		"passed", passed)

	return &ScoreResult{Correct: correct, Total: total, Score: score, Passed: passed}, nil
}

// attemptDuration measures seconds since the latest quiz_start for the
// (user, module, course) triple. Nil when no start event exists.
func (s *quizService) attemptDuration(ctx context.Context, userID, moduleID, courseID string) *int {
	start, err := s.repo.Activity().LatestQuizStart(ctx, nil, userID, moduleID, courseID)
	if err != nil {
		if !repositories.IsNotFoundError(err) {
			s.logger.Warn("Failed to load quiz start event", "error", err, "user_id", userID)
		}
		return nil
	}
	seconds := int(time.Since(start.OccurredAt).Seconds())
	return &seconds
}

// ImportQuiz seeds a module's quiz from an XLSX workbook. Each row after
// the header holds question text, four options, and the correct letter.
func (s *quizService) ImportQuiz(ctx context.Context, moduleID string, workbook io.Reader) (*models.Quiz, error) {
	if _, err := s.repo.Module().GetByID(ctx, nil, moduleID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrModuleNotFound
		}
		return nil, fmt.Errorf("failed to resolve module: %w", err)
	}

	f, err := excelize.OpenReader(workbook)
	if err != nil {
		return nil, NewValidationError("file", "not a readable XLSX workbook", nil)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook rows: %w", err)
	}

	quiz := &models.Quiz{ModuleID: moduleID}
	for i, row := range rows {
		if i == 0 && isImportHeader(row) {
			continue
		}
		if len(row) < 2+models.QuizOptionCount {
			return nil, NewValidationError("rows", fmt.Sprintf("row %d needs question, %d options and answer", i+1, models.QuizOptionCount), len(row))
		}

		text := strings.TrimSpace(row[0])
		if text == "" {
			continue
		}

		options := make([]string, models.QuizOptionCount)
		for j := 0; j < models.QuizOptionCount; j++ {
			options[j] = strings.TrimSpace(row[1+j])
		}

		letter := strings.ToUpper(strings.TrimSpace(row[1+models.QuizOptionCount]))
		if len(letter) != 1 || letter[0] < 'A' || int(letter[0]-'A') >= models.QuizOptionCount {
			return nil, NewValidationError("answer", fmt.Sprintf("row %d answer must be a letter A-%c", i+1, 'A'+models.QuizOptionCount-1), letter)
		}

		quiz.Questions = append(quiz.Questions, models.QuizQuestion{
			Position: len(quiz.Questions),
			Text:     text,
			Options:  datatypes.JSONSlice[string](options),
			Answer:   int(letter[0] - 'A'),
		})
	}

	if len(quiz.Questions) == 0 {
		return nil, NewValidationError("rows", "workbook contains no questions", 0)
	}

	if err := s.repo.Quiz().ReplaceForModule(ctx, nil, quiz); err != nil {
		return nil, fmt.Errorf("failed to replace quiz: %w", err)
	}

	s.logger.Info("Quiz imported", "module_id", moduleID, "questions", len(quiz.Questions))

	return quiz, nil
}

func isImportHeader(row []string) bool {
	return len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "question")
}
