package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pocketledger/pocketledger/internal/model"
	"github.com/pocketledger/pocketledger/internal/recur"
)

// The template registry: CRUD over recurring templates plus the due /
// advance / toggle operations the scheduler drives.

func (s *Store) validateTemplate(t model.RecurringTemplate) error {
	if !t.Amount.IsPositive() {
		return invalid("amount", "must be positive")
	}
	if !t.Type.Valid() {
		return invalid("type", fmt.Sprintf("unknown transaction type %q", t.Type))
	}
	if !t.Rule.Frequency.Valid() {
		return invalid("rule.frequency", fmt.Sprintf("unknown frequency %q", t.Rule.Frequency))
	}
	if _, err := s.AccountByID(t.AccountID); err != nil {
		return invalid("accountId", "unknown account")
	}
	if _, err := s.CategoryByID(t.CategoryID); err != nil {
		return invalid("categoryId", "unknown category")
	}
	if t.Type == model.Transfer {
		if t.ToAccountID == "" {
			return invalid("toAccountId", "required for transfers")
		}
		if t.ToAccountID == t.AccountID {
			return invalid("toAccountId", "transfer source and destination must differ")
		}
		if _, err := s.AccountByID(t.ToAccountID); err != nil {
			return invalid("toAccountId", "unknown account")
		}
	} else if t.ToAccountID != "" {
		return invalid("toAccountId", "only transfers have a destination account")
	}
	if t.NextOccurrence.IsZero() {
		return invalid("nextOccurrence", "must be set")
	}
	return nil
}

// Templates returns a copy of all recurring templates.
func (s *Store) Templates() []model.RecurringTemplate {
	out := make([]model.RecurringTemplate, len(s.templates))
	copy(out, s.templates)
	return out
}

func (s *Store) TemplateByID(id string) (model.RecurringTemplate, error) {
	for _, t := range s.templates {
		if t.ID == id {
			return t, nil
		}
	}
	return model.RecurringTemplate{}, notFound("template", id)
}

// TemplateByGroup returns the template owning the recurring group.
func (s *Store) TemplateByGroup(groupID string) (model.RecurringTemplate, error) {
	for _, t := range s.templates {
		if t.GroupID == groupID {
			return t, nil
		}
	}
	return model.RecurringTemplate{}, notFound("template group", groupID)
}

// AddTemplate validates and stores a template. Creating a template
// mints the recurring group id that links all materialized instances.
func (s *Store) AddTemplate(t model.RecurringTemplate) (model.RecurringTemplate, error) {
	t.Rule = t.Rule.Normalized()
	if err := s.validateTemplate(t); err != nil {
		return model.RecurringTemplate{}, err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.GroupID == "" {
		t.GroupID = uuid.NewString()
	}
	now := s.clock.Now()
	t.NextOccurrence = t.NextOccurrence.UTC()
	t.IsActive = true
	t.CreatedAt, t.UpdatedAt = now, now
	s.templates = append(s.templates, t)
	if err := s.persist(KeyTemplates); err != nil {
		s.templates = s.templates[:len(s.templates)-1]
		return model.RecurringTemplate{}, err
	}
	s.emit(KeyTemplates, OpAdd, t.ID)
	return t, nil
}

// UpdateTemplate replaces the stored template. Group id and creation
// time are immutable; NextOccurrence may be edited but never backward
// past an already-materialized date (the scheduler's duplicate check
// covers same-day rematerialization regardless).
func (s *Store) UpdateTemplate(t model.RecurringTemplate) error {
	for i := range s.templates {
		if s.templates[i].ID == t.ID {
			t.Rule = t.Rule.Normalized()
			if err := s.validateTemplate(t); err != nil {
				return err
			}
			prev := s.templates[i]
			t.GroupID = prev.GroupID
			t.CreatedAt = prev.CreatedAt
			t.UpdatedAt = s.clock.Now()
			t.NextOccurrence = t.NextOccurrence.UTC()
			s.templates[i] = t
			if err := s.persist(KeyTemplates); err != nil {
				s.templates[i] = prev
				return err
			}
			s.emit(KeyTemplates, OpUpdate, t.ID)
			return nil
		}
	}
	return notFound("template", t.ID)
}

// DeleteTemplate removes the template. Materialized transactions are
// untouched.
func (s *Store) DeleteTemplate(id string) error {
	for i := range s.templates {
		if s.templates[i].ID == id {
			prev := s.templates
			s.templates = append(append([]model.RecurringTemplate{}, s.templates[:i]...), s.templates[i+1:]...)
			if err := s.persist(KeyTemplates); err != nil {
				s.templates = prev
				return err
			}
			s.emit(KeyTemplates, OpDelete, id)
			return nil
		}
	}
	return notFound("template", id)
}

// DueTemplates returns active templates whose next occurrence is at or
// before asOf.
func (s *Store) DueTemplates(asOf time.Time) []model.RecurringTemplate {
	var out []model.RecurringTemplate
	for _, t := range s.templates {
		if t.IsActive && !t.NextOccurrence.After(asOf) {
			out = append(out, t)
		}
	}
	return out
}

// AdvanceTemplate moves the template's next occurrence forward by one
// rule step. The pointer never regresses.
func (s *Store) AdvanceTemplate(id string) (model.RecurringTemplate, error) {
	for i := range s.templates {
		if s.templates[i].ID != id {
			continue
		}
		prev := s.templates[i]
		next, err := recur.Next(prev.Rule, prev.NextOccurrence)
		if err != nil {
			return model.RecurringTemplate{}, err
		}
		if !next.After(prev.NextOccurrence) {
			return model.RecurringTemplate{}, fmt.Errorf("advance template %q: %w", id, recur.ErrRuleArithmetic)
		}
		s.templates[i].NextOccurrence = next
		s.templates[i].UpdatedAt = s.clock.Now()
		if err := s.persist(KeyTemplates); err != nil {
			s.templates[i] = prev
			return model.RecurringTemplate{}, err
		}
		s.emit(KeyTemplates, OpUpdate, id)
		return s.templates[i], nil
	}
	return model.RecurringTemplate{}, notFound("template", id)
}

// ToggleTemplate flips the active flag without touching the next
// occurrence pointer.
func (s *Store) ToggleTemplate(id string) (model.RecurringTemplate, error) {
	for i := range s.templates {
		if s.templates[i].ID == id {
			prev := s.templates[i]
			s.templates[i].IsActive = !prev.IsActive
			s.templates[i].UpdatedAt = s.clock.Now()
			if err := s.persist(KeyTemplates); err != nil {
				s.templates[i] = prev
				return model.RecurringTemplate{}, err
			}
			s.emit(KeyTemplates, OpUpdate, id)
			return s.templates[i], nil
		}
	}
	return model.RecurringTemplate{}, notFound("template", id)
}

// DeactivateTemplate clears the active flag (idempotent).
func (s *Store) DeactivateTemplate(id string) error {
	for i := range s.templates {
		if s.templates[i].ID == id {
			if !s.templates[i].IsActive {
				return nil
			}
			prev := s.templates[i]
			s.templates[i].IsActive = false
			s.templates[i].UpdatedAt = s.clock.Now()
			if err := s.persist(KeyTemplates); err != nil {
				s.templates[i] = prev
				return err
			}
			s.emit(KeyTemplates, OpUpdate, id)
			return nil
		}
	}
	return notFound("template", id)
}
