package queue

import (
	"context"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/patrickkostjens/firefly-iii/internal/models"
	"github.com/patrickkostjens/firefly-iii/internal/rules"
)

// Worker executes rule run messages against the database.
type Worker struct {
	db *gorm.DB
}

func NewWorker(db *gorm.DB) *Worker {
	return &Worker{db: db}
}

// HandleRuleRun resolves the rule group from the message and runs it over
// the requested accounts and window.
//
// Rule actions are idempotent, so a redelivered message is harmless.
func (w *Worker) HandleRuleRun(ctx context.Context, msg *RuleRunMessage) error {
	window, err := msg.Window()
	if err != nil {
		return err
	}

	var group models.RuleGroup

	err = w.db.WithContext(ctx).First(&group, msg.RuleGroupID).Error
	if err != nil {
		return err
	}

	log.Info().
		Str("group", group.Title).
		Int("accounts", len(msg.AccountIDs)).
		Str("window", window.String()).
		Msg("running rule group from queue")

	return rules.ExecuteGroup(w.db.WithContext(ctx), group, msg.AccountIDs, window)
}
