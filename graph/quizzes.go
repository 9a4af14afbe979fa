package graph

import (
	"context"
	"strings"

	"github.com/Sean-Brix/RiderMind-sub003/apperr"
	"github.com/Sean-Brix/RiderMind-sub003/database"
	"github.com/Sean-Brix/RiderMind-sub003/models/content"
	"github.com/Sean-Brix/RiderMind-sub003/sequencer"

	"github.com/google/uuid"
)

type QuizInput struct {
	Title       string
	Description string
}

type QuizPatch struct {
	Title       *string
	Description *string
}

type QuestionPatch struct {
	Text  *string
	Media *content.QuestionMedia
}

type OptionPatch struct {
	Text      *string
	IsCorrect *bool
}

type QuestionDetail struct {
	content.Question
	Options []content.Option `json:"options"`
}

// QuizDetail is a quiz with its questions and their options, all in order.
type QuizDetail struct {
	content.Quiz
	Questions []QuestionDetail `json:"questions"`
}

func (m *Manager) CreateQuiz(ctx context.Context, in QuizInput) (*content.Quiz, error) {
	if err := requireText("quiz", "title", in.Title); err != nil {
		return nil, err
	}
	quiz := &content.Quiz{Title: strings.TrimSpace(in.Title), Description: in.Description}
	err := m.store.Transaction(ctx, func(tx *database.Tx) error {
		return tx.DB.Create(quiz).Error
	})
	if err != nil {
		return nil, err
	}
	return quiz, nil
}

func (m *Manager) GetQuiz(ctx context.Context, id uuid.UUID) (*QuizDetail, error) {
	var out *QuizDetail
	err := m.store.Transaction(ctx, func(tx *database.Tx) error {
		quiz, err := load[content.Quiz](tx, "quiz", id)
		if err != nil {
			return err
		}
		out = &QuizDetail{Quiz: *quiz, Questions: []QuestionDetail{}}

		var questions []content.Question
		if err := ordered(tx.DB, "quiz_id", id).Find(&questions).Error; err != nil {
			return apperr.Storage("load questions", err)
		}
		if len(questions) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, len(questions))
		for i, q := range questions {
			ids[i] = q.ID
		}
		var options []content.Option
		if err := tx.DB.Where("question_id IN ? AND position >= 0", ids).
			Order("position ASC, created_at ASC").Find(&options).Error; err != nil {
			return apperr.Storage("load options", err)
		}
		byQuestion := make(map[uuid.UUID][]content.Option, len(questions))
		for _, o := range options {
			byQuestion[o.QuestionID] = append(byQuestion[o.QuestionID], o)
		}
		for _, q := range questions {
			opts := byQuestion[q.ID]
			if opts == nil {
				opts = []content.Option{}
			}
			out.Questions = append(out.Questions, QuestionDetail{Question: q, Options: opts})
		}
		return nil
	})
	return out, err
}

func (m *Manager) ListQuizzes(ctx context.Context, page Page) (*List[content.Quiz], error) {
	var out *List[content.Quiz]
	err := m.store.Transaction(ctx, func(tx *database.Tx) error {
		var err error
		out, err = list[content.Quiz](tx, page, "quizzes")
		return err
	})
	return out, err
}

func (m *Manager) UpdateQuiz(ctx context.Context, id uuid.UUID, patch QuizPatch) (*content.Quiz, error) {
	if patch.Title != nil {
		if err := requireText("quiz", "title", *patch.Title); err != nil {
			return nil, err
		}
	}
	var quiz *content.Quiz
	err := m.store.Transaction(ctx, func(tx *database.Tx) error {
		var err error
		if quiz, err = load[content.Quiz](tx, "quiz", id); err != nil {
			return err
		}
		if patch.Title != nil {
			quiz.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Description != nil {
			quiz.Description = *patch.Description
		}
		return tx.DB.Save(quiz).Error
	})
	return quiz, err
}

// DeleteQuiz removes options, then questions, then the quiz.
func (m *Manager) DeleteQuiz(ctx context.Context, id uuid.UUID) (Counts, error) {
	counts := Counts{}
	err := m.store.Transaction(ctx, func(tx *database.Tx) error {
		if err := tx.LockParents(parents("quiz", id)...); err != nil {
			return err
		}
		if _, err := load[content.Quiz](tx, "quiz", id); err != nil {
			return err
		}
		var questionIDs []uuid.UUID
		if err := tx.DB.Model(&content.Question{}).Where("quiz_id = ?", id).Pluck("id", &questionIDs).Error; err != nil {
			return apperr.Storage("load questions", err)
		}
		if err := tx.LockParents(parents("question", questionIDs...)...); err != nil {
			return err
		}

		keys := []sequencer.GroupKey{sequencer.Questions(id)}
		for _, q := range questionIDs {
			keys = append(keys, sequencer.Options(q))
		}
		if err := tx.LockGroups(keyStrings(keys...)...); err != nil {
			return err
		}

		if len(questionIDs) > 0 {
			res := tx.DB.Where("question_id IN ?", questionIDs).Delete(&content.Option{})
			if res.Error != nil {
				return apperr.Storage("delete options", res.Error)
			}
			counts["options"] = res.RowsAffected
		}
		res := tx.DB.Where("quiz_id = ?", id).Delete(&content.Question{})
		if res.Error != nil {
			return apperr.Storage("delete questions", res.Error)
		}
		counts["questions"] = res.RowsAffected

		if err := tx.DB.Delete(&content.Quiz{}, "id = ?", id).Error; err != nil {
			return apperr.Storage("delete quiz", err)
		}
		counts["quizzes"] = 1
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.log.Info("quiz deleted", "quiz_id", id, "counts", counts)
	return counts, nil
}

func (m *Manager) AddQuestion(ctx context.Context, quizID uuid.UUID, spec content.QuestionSpec, index int) (*content.Question, error) {
	if err := spec.Validate(); err != nil {
		return nil, invalid("question", nil, err)
	}
	q := &content.Question{QuizID: quizID, Position: content.Unplaced, Text: strings.TrimSpace(spec.Text)}
	q.SetMedia(spec.Media)

	err := m.store.Transaction(ctx, func(tx *database.Tx) error {
		if err := tx.LockParents(parents("quiz", quizID)...); err != nil {
			return err
		}
		if _, err := load[content.Quiz](tx, "quiz", quizID); err != nil {
			return err
		}
		if err := tx.DB.Create(q).Error; err != nil {
			return err
		}
		pos, err := m.seq.InsertAt(tx, sequencer.Questions(quizID), q.ID, index)
		q.Position = pos
		return err
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (m *Manager) UpdateQuestion(ctx context.Context, id uuid.UUID, patch QuestionPatch) (*content.Question, error) {
	if patch.Text != nil {
		if err := requireText("question", "text", *patch.Text); err != nil {
			return nil, err
		}
	}
	if patch.Media != nil {
		if err := (content.QuestionSpec{Text: "-", Media: *patch.Media}).Validate(); err != nil {
			return nil, invalid("question", id, err)
		}
	}
	var q *content.Question
	err := m.store.Transaction(ctx, func(tx *database.Tx) error {
		var err error
		if q, err = load[content.Question](tx, "question", id); err != nil {
			return err
		}
		if patch.Text != nil {
			q.Text = strings.TrimSpace(*patch.Text)
		}
		if patch.Media != nil {
			q.SetMedia(*patch.Media)
		}
		return tx.DB.Save(q).Error
	})
	return q, err
}

func (m *Manager) MoveQuestion(ctx context.Context, id uuid.UUID, index int) (*content.Question, error) {
	var q *content.Question
	err := m.store.Transaction(ctx, func(tx *database.Tx) error {
		var err error
		if q, err = load[content.Question](tx, "question", id); err != nil {
			return err
		}
		q.Position, err = m.seq.MoveWithin(tx, sequencer.Questions(q.QuizID), id, index)
		return err
	})
	return q, err
}

// DeleteQuestion removes the question's options, then the question, and
// closes the gap in its quiz.
func (m *Manager) DeleteQuestion(ctx context.Context, id uuid.UUID) (Counts, error) {
	counts := Counts{}
	err := m.store.Transaction(ctx, func(tx *database.Tx) error {
		if err := tx.LockParents(parents("question", id)...); err != nil {
			return err
		}
		q, err := load[content.Question](tx, "question", id)
		if err != nil {
			return err
		}
		if err := tx.LockGroups(keyStrings(sequencer.Questions(q.QuizID), sequencer.Options(id))...); err != nil {
			return err
		}
		res := tx.DB.Where("question_id = ?", id).Delete(&content.Option{})
		if res.Error != nil {
			return apperr.Storage("delete options", res.Error)
		}
		counts["options"] = res.RowsAffected

		if _, err := m.seq.RemoveFrom(tx, sequencer.Questions(q.QuizID), id); err != nil {
			return err
		}
		if err := tx.DB.Delete(&content.Question{}, "id = ?", id).Error; err != nil {
			return apperr.Storage("delete question", err)
		}
		counts["questions"] = 1
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (m *Manager) ReorderQuestions(ctx context.Context, quizID uuid.UUID, questionIDs []uuid.UUID) (*QuizDetail, error) {
	err := m.store.Transaction(ctx, func(tx *database.Tx) error {
		if _, err := load[content.Quiz](tx, "quiz", quizID); err != nil {
			return err
		}
		return m.seq.ReindexFromScratch(tx, sequencer.Questions(quizID), questionIDs)
	})
	if err != nil {
		return nil, err
	}
	return m.GetQuiz(ctx, quizID)
}

func (m *Manager) AddOption(ctx context.Context, questionID uuid.UUID, spec content.OptionSpec, index int) (*content.Option, error) {
	if err := spec.Validate(); err != nil {
		return nil, invalid("option", nil, err)
	}
	opt := &content.Option{QuestionID: questionID, Position: content.Unplaced, Text: strings.TrimSpace(spec.Text), IsCorrect: spec.IsCorrect}

	err := m.store.Transaction(ctx, func(tx *database.Tx) error {
		if err := tx.LockParents(parents("question", questionID)...); err != nil {
			return err
		}
		if _, err := load[content.Question](tx, "question", questionID); err != nil {
			return err
		}
		if err := tx.DB.Create(opt).Error; err != nil {
			return err
		}
		pos, err := m.seq.InsertAt(tx, sequencer.Options(questionID), opt.ID, index)
		opt.Position = pos
		return err
	})
	if err != nil {
		return nil, err
	}
	return opt, nil
}

func (m *Manager) UpdateOption(ctx context.Context, id uuid.UUID, patch OptionPatch) (*content.Option, error) {
	if patch.Text != nil {
		if err := requireText("option", "text", *patch.Text); err != nil {
			return nil, err
		}
	}
	var opt *content.Option
	err := m.store.Transaction(ctx, func(tx *database.Tx) error {
		var err error
		if opt, err = load[content.Option](tx, "option", id); err != nil {
			return err
		}
		if patch.Text != nil {
			opt.Text = strings.TrimSpace(*patch.Text)
		}
		if patch.IsCorrect != nil {
			opt.IsCorrect = *patch.IsCorrect
		}
		return tx.DB.Save(opt).Error
	})
	return opt, err
}

func (m *Manager) MoveOption(ctx context.Context, id uuid.UUID, index int) (*content.Option, error) {
	var opt *content.Option
	err := m.store.Transaction(ctx, func(tx *database.Tx) error {
		var err error
		if opt, err = load[content.Option](tx, "option", id); err != nil {
			return err
		}
		opt.Position, err = m.seq.MoveWithin(tx, sequencer.Options(opt.QuestionID), id, index)
		return err
	})
	return opt, err
}

func (m *Manager) DeleteOption(ctx context.Context, id uuid.UUID) error {
	return m.store.Transaction(ctx, func(tx *database.Tx) error {
		opt, err := load[content.Option](tx, "option", id)
		if err != nil {
			return err
		}
		if _, err := m.seq.RemoveFrom(tx, sequencer.Options(opt.QuestionID), id); err != nil {
			return err
		}
		return tx.DB.Delete(&content.Option{}, "id = ?", id).Error
	})
}

func (m *Manager) ReorderOptions(ctx context.Context, questionID uuid.UUID, optionIDs []uuid.UUID) ([]content.Option, error) {
	options := []content.Option{}
	err := m.store.Transaction(ctx, func(tx *database.Tx) error {
		if _, err := load[content.Question](tx, "question", questionID); err != nil {
			return err
		}
		if err := m.seq.ReindexFromScratch(tx, sequencer.Options(questionID), optionIDs); err != nil {
			return err
		}
		return ordered(tx.DB, "question_id", questionID).Find(&options).Error
	})
	if err != nil {
		return nil, err
	}
	return options, nil
}
