package sequencer

import (
	"fmt"

	"github.com/google/uuid"
)

type Kind string

const (
	ModuleSlides     Kind = "module_slides"
	ModuleObjectives Kind = "module_objectives"
	CategoryModules  Kind = "category_modules"
	QuizQuestions    Kind = "quiz_questions"
	QuestionOptions  Kind = "question_options"
)

// Kinds lists every sibling-group kind.
var Kinds = []Kind{ModuleSlides, ModuleObjectives, CategoryModules, QuizQuestions, QuestionOptions}

type groupSpec struct {
	table        string
	parentColumn string
	itemColumn   string
	entity       string
}

var specs = map[Kind]groupSpec{
	ModuleSlides:     {table: "slides", parentColumn: "module_id", itemColumn: "id", entity: "slide"},
	ModuleObjectives: {table: "module_objectives", parentColumn: "module_id", itemColumn: "id", entity: "objective"},
	CategoryModules:  {table: "category_modules", parentColumn: "category_id", itemColumn: "module_id", entity: "category_module"},
	QuizQuestions:    {table: "questions", parentColumn: "quiz_id", itemColumn: "id", entity: "question"},
	QuestionOptions:  {table: "options", parentColumn: "question_id", itemColumn: "id", entity: "option"},
}

// GroupKey identifies one sibling group: every child of one kind under one parent.
type GroupKey struct {
	Kind     Kind
	ParentID uuid.UUID
}

func (k GroupKey) String() string {
	return fmt.Sprintf("%s:%s", k.Kind, k.ParentID)
}

func (k GroupKey) spec() (groupSpec, error) {
	s, ok := specs[k.Kind]
	if !ok {
		return groupSpec{}, fmt.Errorf("unknown sibling group kind %q", k.Kind)
	}
	return s, nil
}

func Slides(moduleID uuid.UUID) GroupKey { return GroupKey{Kind: ModuleSlides, ParentID: moduleID} }
func Objectives(moduleID uuid.UUID) GroupKey { return GroupKey{Kind: ModuleObjectives, ParentID: moduleID} }
func CategoryMembers(categoryID uuid.UUID) GroupKey { return GroupKey{Kind: CategoryModules, ParentID: categoryID} }
func Questions(quizID uuid.UUID) GroupKey { return GroupKey{Kind: QuizQuestions, ParentID: quizID} }
func Options(questionID uuid.UUID) GroupKey { return GroupKey{Kind: QuestionOptions, ParentID: questionID} }
