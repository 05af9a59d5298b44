package entity

type Category struct {
	Base

	Name        string `gorm:"unique"`
	Description string
	Icon        string
	CreatedBy   string
}
