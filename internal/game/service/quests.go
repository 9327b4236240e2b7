package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cheeseisland/engine/internal/game/domain"
	"github.com/cheeseisland/engine/internal/game/filter"
	"github.com/cheeseisland/engine/internal/game/storage"
	apperrors "github.com/cheeseisland/engine/internal/platform/errors"
)

// ListQuestsInput bounds a quest listing.
type ListQuestsInput struct {
	Filter    string
	PageSize  int
	PageToken string
}

// ListQuestsResult is one page of quests.
type ListQuestsResult struct {
	Quests        []domain.Quest
	NextPageToken string
}

// UpdateQuestInput carries a quest update; nil fields are unchanged.
type UpdateQuestInput struct {
	QuestID       string
	Name          *string
	Description   *string
	Narrative     *string
	RequiredItems []string
	IsActive      *bool
}

// CreateQuest registers a new quest.
func (s *Service) CreateQuest(ctx context.Context, input domain.CreateQuestInput) (domain.Quest, error) {
	quest, err := domain.CreateQuest(input, s.clock, s.idGenerator)
	if err != nil {
		return domain.Quest{}, err
	}
	if err := s.store.WithinTx(ctx, func(tx storage.Tx) error {
		return tx.PutQuest(ctx, quest)
	}); err != nil {
		return domain.Quest{}, fmt.Errorf("persist quest: %w", err)
	}
	return quest, nil
}

// GetQuest returns one quest with its item requirements.
func (s *Service) GetQuest(ctx context.Context, id string) (domain.Quest, error) {
	quest, err := s.store.GetQuest(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Quest{}, apperrors.New(apperrors.CodeNotFound, "quest not found")
		}
		return domain.Quest{}, fmt.Errorf("get quest: %w", err)
	}
	return quest, nil
}

// ListQuests returns one filtered page of quests.
func (s *Service) ListQuests(ctx context.Context, input ListQuestsInput) (ListQuestsResult, error) {
	mapping, err := filter.QuestMapping()
	if err != nil {
		return ListQuestsResult{}, fmt.Errorf("quest filter mapping: %w", err)
	}
	condition, err := filter.Parse(input.Filter, mapping)
	if err != nil {
		return ListQuestsResult{}, apperrors.Wrap(apperrors.CodeValidation, "invalid quest filter", err)
	}

	page, err := s.store.ListQuests(ctx, storage.ListQuery{
		WhereClause: condition.Clause,
		WhereParams: condition.Params,
		PageSize:    clampPageSize(input.PageSize),
		PageToken:   input.PageToken,
	})
	if err != nil {
		return ListQuestsResult{}, fmt.Errorf("list quests: %w", err)
	}
	return ListQuestsResult{
		Quests:        page.Quests,
		NextPageToken: page.NextPageToken,
	}, nil
}

// UpdateQuest applies a partial quest update. A non-nil RequiredItems
// replaces the whole requirement list.
func (s *Service) UpdateQuest(ctx context.Context, input UpdateQuestInput) (domain.Quest, error) {
	var quest domain.Quest
	err := s.store.WithinTx(ctx, func(tx storage.Tx) error {
		var err error
		quest, err = tx.GetQuest(ctx, strings.TrimSpace(input.QuestID))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return apperrors.New(apperrors.CodeNotFound, "quest not found")
			}
			return fmt.Errorf("get quest: %w", err)
		}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return domain.ErrQuestEmptyName
			}
			quest.Name = name
		}
		if input.Description != nil {
			quest.Description = *input.Description
		}
		if input.Narrative != nil {
			quest.Narrative = *input.Narrative
		}
		if input.RequiredItems != nil {
			required := make([]string, 0, len(input.RequiredItems))
			seen := make(map[string]struct{}, len(input.RequiredItems))
			for _, itemType := range input.RequiredItems {
				itemType = strings.TrimSpace(itemType)
				if itemType == "" {
					continue
				}
				if _, dup := seen[itemType]; dup {
					continue
				}
				seen[itemType] = struct{}{}
				required = append(required, itemType)
			}
			quest.RequiredItems = required
		}
		if input.IsActive != nil {
			quest.IsActive = *input.IsActive
		}
		quest.UpdatedAt = s.clock().UTC()

		return tx.UpdateQuest(ctx, quest)
	})
	if err != nil {
		return domain.Quest{}, err
	}
	return quest, nil
}
