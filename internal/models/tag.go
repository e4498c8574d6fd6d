package models

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// TagMode describes the special behavior of a tag.
type TagMode string

const (
	// TagModeNothing marks a plain tag without special behavior.
	TagModeNothing TagMode = "nothing"
	// TagModeBalancingAct marks transfers that offset otherwise-unbudgeted
	// expenses, e.g. from a savings account.
	TagModeBalancingAct TagMode = "balancingAct"
)

// Tag associates journals.
type Tag struct {
	DefaultModel
	Name string  `gorm:"uniqueIndex:tag_name"`
	Mode TagMode `json:"mode"`
}

var ErrTagNameNotUnique = errors.New("the tag name must be unique")

func (t *Tag) BeforeSave(_ *gorm.DB) error {
	if t.Mode == "" {
		t.Mode = TagModeNothing
	}

	t.Name = strings.TrimSpace(t.Name)

	return nil
}
