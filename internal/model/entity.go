package model

// EntityType is the semantic type assigned by the NER collaborator.
// Values follow the OntoNotes label names most NER services emit.
type EntityType string

const (
	EntityPerson   EntityType = "PERSON"
	EntityPlace    EntityType = "GPE"
	EntityOrg      EntityType = "ORG"
	EntityCardinal EntityType = "CARDINAL"
	EntityOrdinal  EntityType = "ORDINAL"
	EntityPercent  EntityType = "PERCENT"
	EntityTime     EntityType = "TIME"
	EntityQuantity EntityType = "QUANTITY"
	EntityDate     EntityType = "DATE"
	EntityFacility EntityType = "FAC"
	EntityLocation EntityType = "LOC"
	EntityEvent    EntityType = "EVENT"
	EntityProduct  EntityType = "PRODUCT"
	EntityNorp     EntityType = "NORP" // Nationalities, religious or political groups
	EntityOther    EntityType = "OTHER"
)

// Entity is a contiguous named span inside a tokenized sentence
type Entity struct {
	Text   string     `json:"text"`
	Type   EntityType `json:"type"`
	Start  int        `json:"start"` // First token (inclusive)
	End    int        `json:"end"`   // Last token (exclusive)
	Tokens []string   `json:"tokens"`
}

// Len returns the number of tokens the entity spans
func (e Entity) Len() int {
	return e.End - e.Start
}
