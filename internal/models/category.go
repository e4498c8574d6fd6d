package models

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Category represents a category of journals.
type Category struct {
	DefaultModel
	Name string `gorm:"uniqueIndex:category_name"`
}

var ErrCategoryNameNotUnique = errors.New("the category name must be unique")

func (c *Category) BeforeSave(_ *gorm.DB) error {
	c.Name = strings.TrimSpace(c.Name)
	return nil
}
