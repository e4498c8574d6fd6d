package models_test

import (
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/patrickkostjens/firefly-iii/internal/models"
)

func (suite *TestSuiteStandard) createTestCategory(category models.Category) models.Category {
	if category.Name == "" {
		category.Name = uuid.NewString()
	}

	err := suite.db.Create(&category).Error
	if err != nil {
		suite.Assert().FailNow("Category could not be saved", "Error: %s, Category: %#v", err, category)
	}

	return category
}

func (suite *TestSuiteStandard) TestCategoryNameNotUnique() {
	category := suite.createTestCategory(models.Category{Name: "Daily life"})

	err := suite.db.Create(&models.Category{Name: category.Name}).Error
	assert.ErrorIs(suite.T(), err, models.ErrCategoryNameNotUnique)
}

func (suite *TestSuiteStandard) TestCategoryTrimWhitespace() {
	category := suite.createTestCategory(models.Category{Name: "  Daily life \t"})

	assert.Equal(suite.T(), "Daily life", category.Name)
}
