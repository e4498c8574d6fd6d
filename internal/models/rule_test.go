package models_test

import (
	"github.com/stretchr/testify/assert"

	"github.com/patrickkostjens/firefly-iii/internal/models"
)

func (suite *TestSuiteStandard) createTestRuleGroup(group models.RuleGroup) models.RuleGroup {
	err := suite.db.Create(&group).Error
	if err != nil {
		suite.Assert().FailNow("Rule group could not be saved", "Error: %s, RuleGroup: %#v", err, group)
	}

	return group
}

func (suite *TestSuiteStandard) createTestRule(rule models.Rule) models.Rule {
	err := suite.db.Create(&rule).Error
	if err != nil {
		suite.Assert().FailNow("Rule could not be saved", "Error: %s, Rule: %#v", err, rule)
	}

	return rule
}

func (suite *TestSuiteStandard) TestGroupRulesOrderAndActive() {
	group := suite.createTestRuleGroup(models.RuleGroup{Title: "Cleanup"})

	second := suite.createTestRule(models.Rule{
		RuleGroupID: group.ID,
		Title:       "Second",
		Order:       2,
		Active:      true,
	})

	first := suite.createTestRule(models.Rule{
		RuleGroupID: group.ID,
		Title:       "First",
		Order:       1,
		Active:      true,
	})

	_ = suite.createTestRule(models.Rule{
		RuleGroupID: group.ID,
		Title:       "Disabled",
		Order:       3,
		Active:      false,
	})

	rules, err := models.GroupRules(suite.db, group.ID)
	assert.Nil(suite.T(), err)
	assert.Len(suite.T(), rules, 2, "inactive rules must not be returned")
	assert.Equal(suite.T(), first.ID, rules[0].ID)
	assert.Equal(suite.T(), second.ID, rules[1].ID)
}

func (suite *TestSuiteStandard) TestGroupRulesPreloadsOrdered() {
	group := suite.createTestRuleGroup(models.RuleGroup{Title: "Cleanup"})

	_ = suite.createTestRule(models.Rule{
		RuleGroupID: group.ID,
		Title:       "Tag groceries",
		Active:      true,
		Triggers: []models.RuleTrigger{
			{Kind: "description_contains", Value: "market", Order: 2},
			{Kind: "transaction_type", Value: "withdrawal", Order: 1},
		},
		Actions: []models.RuleAction{
			{Kind: "add_tag", Value: "groceries", Order: 2},
			{Kind: "set_category", Value: "Daily life", Order: 1},
		},
	})

	rules, err := models.GroupRules(suite.db, group.ID)
	assert.Nil(suite.T(), err)
	assert.Len(suite.T(), rules, 1)

	assert.Len(suite.T(), rules[0].Triggers, 2)
	assert.Equal(suite.T(), "transaction_type", rules[0].Triggers[0].Kind)
	assert.Equal(suite.T(), "description_contains", rules[0].Triggers[1].Kind)

	assert.Len(suite.T(), rules[0].Actions, 2)
	assert.Equal(suite.T(), "set_category", rules[0].Actions[0].Kind)
	assert.Equal(suite.T(), "add_tag", rules[0].Actions[1].Kind)
}
