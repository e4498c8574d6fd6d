// Package rules evaluates stored trigger/action rules against journals.
package rules

import (
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/patrickkostjens/firefly-iii/internal/journal"
	"github.com/patrickkostjens/firefly-iii/internal/models"
	"github.com/patrickkostjens/firefly-iii/internal/types"
)

var journalsProcessed = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "firefly_rule_journals_processed_total",
		Help: "How many journals have been evaluated by the rule engine.",
	},
)

var actionsApplied = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "firefly_rule_actions_applied_total",
		Help: "How many rule actions have been executed, partitioned by action kind.",
	},
	[]string{"kind"},
)

// RegisterMetrics registers the rule engine metrics with the default
// Prometheus registry.
func RegisterMetrics() error {
	for _, c := range []prometheus.Collector{journalsProcessed, actionsApplied} {
		if err := prometheus.Register(c); err != nil {
			return err
		}
	}

	return nil
}

// Processor evaluates one rule.
type Processor struct {
	Rule models.Rule
}

// Match reports whether all triggers of the rule match the journal.
//
// Inactive rules and rules without triggers never match.
func (p Processor) Match(j models.Journal) (bool, error) {
	if !p.Rule.Active || len(p.Rule.Triggers) == 0 {
		return false, nil
	}

	for _, trigger := range p.Rule.Triggers {
		ok, err := matchTrigger(trigger, j)
		if err != nil {
			return false, err
		}

		if !ok {
			return false, nil
		}
	}

	return true, nil
}

// Apply executes the rule's actions on the journal in order.
func (p Processor) Apply(db *gorm.DB, j *models.Journal) error {
	for _, action := range p.Rule.Actions {
		err := applyAction(db, action, j)
		if err != nil {
			return err
		}

		actionsApplied.WithLabelValues(action.Kind).Inc()
	}

	return nil
}

// ExecuteGroup runs all active rules of the group against the historical
// journals of the accounts in the window.
//
// Rules are evaluated in group order per journal. When a matching rule has
// the stop processing flag set, no further rules are evaluated for that
// journal.
func ExecuteGroup(db *gorm.DB, group models.RuleGroup, accountIDs []uuid.UUID, window types.Range) error {
	rules, err := models.GroupRules(db, group.ID)
	if err != nil {
		return err
	}

	processors := make([]Processor, 0, len(rules))
	for _, rule := range rules {
		processors = append(processors, Processor{Rule: rule})
	}

	journals, err := journal.Fetch(db, journal.Query{
		AccountIDs: accountIDs,
		Range:      &window,
	})
	if err != nil {
		return err
	}

	log.Debug().
		Str("group", group.Title).
		Int("rules", len(processors)).
		Int("journals", len(journals)).
		Msg("executing rule group")

	for i := range journals {
		err := processJournal(db, processors, &journals[i])
		if err != nil {
			return err
		}

		journalsProcessed.Inc()
	}

	return nil
}

// processJournal runs the rule processors against a single journal,
// honoring the stop processing flag.
func processJournal(db *gorm.DB, processors []Processor, j *models.Journal) error {
	for _, p := range processors {
		matched, err := p.Match(*j)
		if err != nil {
			return err
		}

		if !matched {
			continue
		}

		err = p.Apply(db, j)
		if err != nil {
			return err
		}

		if p.Rule.StopProcessing {
			break
		}
	}

	return nil
}
