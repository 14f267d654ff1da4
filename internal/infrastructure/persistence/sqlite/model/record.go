package model

type Record struct {
	RecordID   string `gorm:"column:record_id;type:text;primaryKey"`
	FieldsJSON string `gorm:"column:fields_json;type:text;not null"`
	Status     string `gorm:"column:status;type:text;not null"`
	CreatedAt  string `gorm:"column:created_at;type:text;not null"`
	UpdatedAt  string `gorm:"column:updated_at;type:text;not null"`
}

func (Record) TableName() string {
	return "records"
}
