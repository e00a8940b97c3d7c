package models

import (
	"time"
)

type Question struct {
	UUID           string     `db:"uuid" json:"uuid"`
	ExternalID     string     `db:"external_id" json:"externalId"`
	Statement      string     `db:"statement" json:"statement"`
	Competence     string     `db:"competence" json:"competence"`
	Skill          string     `db:"skill" json:"skill"`
	ExamArea       string     `db:"exam_area" json:"examArea"`
	Subject        string     `db:"subject" json:"subject"`
	Topic          string     `db:"topic" json:"topic"`
	Interpretation *string    `db:"interpretation" json:"interpretation"`
	Strategies     *string    `db:"strategies" json:"strategies"`
	Distractors    *string    `db:"distractors" json:"distractors"`
	TextResolution string     `db:"text_resolution" json:"textResolution"`
	Application    string     `db:"application" json:"application"`
	ModuleID       string     `db:"module_id" json:"moduleId"`
	SubjectID      string     `db:"subject_id" json:"subjectId"`
	DisciplineID   int64      `db:"discipline_id" json:"disciplineId"`
	Approved       bool       `db:"approved" json:"approved"`
	ApprovedAt     *time.Time `db:"approved_at" json:"approvedAt"`
	ApprovedByUUID *string    `db:"approved_by_user_uuid" json:"approvedByUserUuid"`
	MigratedAt     *time.Time `db:"migrated_at" json:"migratedAt"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`

	Alternatives []Alternative `db:"-" json:"alternatives"`
	Discipline   *Discipline   `db:"-" json:"discipline,omitempty"`
	ApprovedBy   *UserSummary  `db:"-" json:"approvedBy,omitempty"`
}

type Alternative struct {
	ID           int64     `db:"id" json:"id"`
	QuestionUUID string    `db:"question_uuid" json:"-"`
	Text         string    `db:"text" json:"text"`
	Position     int       `db:"position" json:"order"`
	Correct      bool      `db:"correct" json:"correct"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// UserSummary is the approver projection embedded in question responses.
type UserSummary struct {
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
}
