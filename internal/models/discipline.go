package models

type Discipline struct {
	ID         int64  `db:"id" json:"id"`
	Slug       string `db:"slug" json:"slug"`
	Name       string `db:"name" json:"name"`
	ExternalID string `db:"external_id" json:"externalId"`
}
