package model

import "time"

// TeamCreatePolicy — кто имеет право создавать команды в шаблоне.
type TeamCreatePolicy string

const (
	TeamCreateEveryone TeamCreatePolicy = "EVERYONE"
	TeamCreateOwner    TeamCreatePolicy = "OWNER"
)

// Template — общий холст, единица коллаборации.
type Template struct {
	ID int64 `gorm:"primaryKey"`

	// UniqueName формируется при создании как <YYYYMMDD>-<name> и после этого не меняется.
	UniqueName string `gorm:"not null;uniqueIndex:uc_template_unique_name"`
	Name       string `gorm:"not null"`

	Width  int `gorm:"not null"`
	Height int `gorm:"not null"`

	TeamCreatePolicy TeamCreatePolicy `gorm:"not null"`

	CreationDate time.Time `gorm:"not null;index"`
}

// UniqueName строит глобально-уникальное имя шаблона из даты создания и имени.
func UniqueName(date time.Time, name string) string {
	return date.Format("20060102") + "-" + name
}
