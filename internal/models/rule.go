package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RuleGroup is an ordered group of rules that is executed as a unit.
type RuleGroup struct {
	DefaultModel
	Title string `json:"title"`
	Order uint   `json:"order"`
	Rules []Rule `json:"-"`
}

// Rule is an ordered list of trigger predicates and action effectors.
//
// When all triggers of an active rule match a journal, its actions are
// executed. StopProcessing halts evaluation of further rules in the group
// for that journal.
type Rule struct {
	DefaultModel
	RuleGroupID    uuid.UUID     `json:"ruleGroupId"`
	Title          string        `json:"title"`
	Order          uint          `json:"order"`
	Active         bool          `json:"active"`
	StopProcessing bool          `json:"stopProcessing"`
	Triggers       []RuleTrigger `json:"-"`
	Actions        []RuleAction  `json:"-"`
}

// RuleTrigger is a single predicate of a rule. Kind selects the predicate,
// Value is its parameter.
type RuleTrigger struct {
	DefaultModel
	RuleID uuid.UUID `json:"ruleId"`
	Kind   string    `json:"kind"`
	Value  string    `json:"value"`
	Order  uint      `json:"order"`
}

// RuleAction is a single effector of a rule. Kind selects the transform,
// Value is its parameter.
type RuleAction struct {
	DefaultModel
	RuleID uuid.UUID `json:"ruleId"`
	Kind   string    `json:"kind"`
	Value  string    `json:"value"`
	Order  uint      `json:"order"`
}

func (g *RuleGroup) BeforeSave(_ *gorm.DB) error {
	g.Title = strings.TrimSpace(g.Title)
	return nil
}

func (r *Rule) BeforeSave(_ *gorm.DB) error {
	r.Title = strings.TrimSpace(r.Title)
	return nil
}

// GroupRules returns the active rules of a group in group order, with
// triggers and actions preloaded in their own order.
func GroupRules(db *gorm.DB, groupID uuid.UUID) ([]Rule, error) {
	var rules []Rule

	err := db.
		Preload("Triggers", func(db *gorm.DB) *gorm.DB {
			return db.Order("rule_triggers.\"order\" ASC")
		}).
		Preload("Actions", func(db *gorm.DB) *gorm.DB {
			return db.Order("rule_actions.\"order\" ASC")
		}).
		Where(&Rule{RuleGroupID: groupID, Active: true}).
		Order("rules.\"order\" ASC").
		Find(&rules).Error

	return rules, err
}
