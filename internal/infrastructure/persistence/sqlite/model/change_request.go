package model

type ChangeRequest struct {
	RequestID      string  `gorm:"column:request_id;type:text;primaryKey"`
	Type           string  `gorm:"column:type;type:text;not null"`
	TargetRecordID *string `gorm:"column:target_record_id;type:text;index"`
	SubmittedBy    string  `gorm:"column:submitted_by;type:text;not null"`
	SubmittedAt    string  `gorm:"column:submitted_at;type:text;not null"`
	Status         string  `gorm:"column:status;type:text;not null;index"`
	ReviewedBy     *string `gorm:"column:reviewed_by;type:text"`
	ReviewedAt     *string `gorm:"column:reviewed_at;type:text"`
	PayloadJSON    string  `gorm:"column:payload_json;type:text;not null"`
}

func (ChangeRequest) TableName() string {
	return "change_requests"
}
