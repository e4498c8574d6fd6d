package models_test

import (
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/patrickkostjens/firefly-iii/internal/models"
)

func (suite *TestSuiteStandard) TestNotFoundUsesResourceName() {
	var budget models.Budget
	err := suite.db.First(&budget, uuid.New()).Error

	assert.ErrorIs(suite.T(), err, models.ErrResourceNotFound)
	assert.Contains(suite.T(), err.Error(), "there is no budget matching your query")
}

func (suite *TestSuiteStandard) TestNotFoundDepluralizesIes() {
	var category models.Category
	err := suite.db.First(&category, uuid.New()).Error

	assert.Contains(suite.T(), err.Error(), "there is no category matching your query")
}

func (suite *TestSuiteStandard) TestClosedDatabaseReturnsGeneralError() {
	suite.CloseDB()

	var account models.Account
	err := suite.db.First(&account, uuid.New()).Error

	assert.ErrorIs(suite.T(), err, models.ErrGeneral)
}
