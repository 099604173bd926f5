package store

import (
	"fmt"

	"github.com/oleamind/agroalloc/domain"
	"gorm.io/gorm"
)

// InteractionRuleStore implements gateway.InteractionRuleSource against
// Postgres.
type InteractionRuleStore struct {
	db *gorm.DB
}

func NewInteractionRuleStore(db *gorm.DB) *InteractionRuleStore {
	return &InteractionRuleStore{db: db}
}

func (s *InteractionRuleStore) GetRules() ([]domain.InteractionRule, error) {
	var rows []InteractionRuleRow
	if err := s.db.Order("rule_id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("store: list interaction rules: %w", err)
	}
	rules := make([]domain.InteractionRule, 0, len(rows))
	for _, row := range rows {
		rules = append(rules, domain.InteractionRule{
			RuleID:        row.RuleID,
			RuleType:      domain.InteractionRuleType(row.RuleType),
			SourceGroup:   row.SourceGroup,
			TargetGroup:   row.TargetGroup,
			ImpactRatio:   row.ImpactRatio,
			IsDirectional: row.IsDirectional,
			Description:   row.Description,
			Expression:    row.Expression,
		})
	}
	return rules, nil
}

// Save upserts one interaction rule.
func (s *InteractionRuleStore) Save(rule domain.InteractionRule) error {
	row := InteractionRuleRow{
		RuleID:        rule.RuleID,
		RuleType:      string(rule.RuleType),
		SourceGroup:   rule.SourceGroup,
		TargetGroup:   rule.TargetGroup,
		ImpactRatio:   rule.ImpactRatio,
		IsDirectional: rule.IsDirectional,
		Description:   rule.Description,
		Expression:    rule.Expression,
	}
	return s.db.Save(&row).Error
}
