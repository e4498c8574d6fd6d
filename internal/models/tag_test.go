package models_test

import (
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/patrickkostjens/firefly-iii/internal/models"
)

func (suite *TestSuiteStandard) createTestTag(tag models.Tag) models.Tag {
	if tag.Name == "" {
		tag.Name = uuid.NewString()
	}

	err := suite.db.Create(&tag).Error
	if err != nil {
		suite.Assert().FailNow("Tag could not be saved", "Error: %s, Tag: %#v", err, tag)
	}

	return tag
}

func (suite *TestSuiteStandard) TestTagModeDefaultsToNothing() {
	tag := suite.createTestTag(models.Tag{})

	assert.Equal(suite.T(), models.TagModeNothing, tag.Mode)
}

func (suite *TestSuiteStandard) TestTagNameNotUnique() {
	tag := suite.createTestTag(models.Tag{Name: "vacation"})

	err := suite.db.Create(&models.Tag{Name: tag.Name}).Error
	assert.ErrorIs(suite.T(), err, models.ErrTagNameNotUnique)
}
