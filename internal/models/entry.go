package models

// Entry is one stored paste. Name is the random identifier handed to the
// uploader; neither field changes once the row exists.
type Entry struct {
	Name    string `gorm:"column:name;primaryKey"`
	Content string `gorm:"column:content;not null"`
}

func (Entry) TableName() string {
	return "bins"
}
