package model

type FieldChange struct {
	RequestID  string  `gorm:"column:request_id;type:text;primaryKey"`
	Field      string  `gorm:"column:field;type:text;primaryKey"`
	ValueJSON  string  `gorm:"column:value_json;type:text;not null"`
	Status     string  `gorm:"column:status;type:text;not null"`
	ApprovedBy *string `gorm:"column:approved_by;type:text"`
	ApprovedAt *string `gorm:"column:approved_at;type:text"`
}

func (FieldChange) TableName() string {
	return "field_changes"
}
