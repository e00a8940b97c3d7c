package models

// Module and Subject mirror the external platform catalog. They are imported
// read-only; questions reference them by external id.
type Module struct {
	ID                   int64  `db:"id" json:"id"`
	ExternalID           string `db:"external_id" json:"externalId"`
	Name                 string `db:"name" json:"name"`
	DisciplineExternalID string `db:"discipline_external_id" json:"disciplineExternalId"`

	Discipline *Discipline `db:"-" json:"discipline,omitempty"`
}

type Subject struct {
	ID               int64  `db:"id" json:"id"`
	ExternalID       string `db:"external_id" json:"externalId"`
	Name             string `db:"name" json:"name"`
	ModuleExternalID string `db:"module_external_id" json:"moduleExternalId"`
}
