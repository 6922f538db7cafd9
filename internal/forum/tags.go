package forum

import (
	"context"
	"strings"

	"github.com/wuwenbin0122/fakeso/internal/models"
)

// GetTagsWithQuestionNumber lists every tag with the number of questions using it.
func (s *Service) GetTagsWithQuestionNumber(ctx context.Context) ([]models.TagCount, error) {
	tags, err := s.stores.Tags.List(ctx)
	if err != nil {
		return nil, s.fail("list tags", err, nil, ErrFetchTags)
	}

	counts := make([]models.TagCount, 0, len(tags))
	for _, tag := range tags {
		n, err := s.stores.Questions.CountByTag(ctx, tag.ID)
		if err != nil {
			return nil, s.fail("count tag questions", err, nil, ErrFetchTags)
		}
		counts = append(counts, models.TagCount{Name: tag.Name, Count: n})
	}
	return counts, nil
}

func (s *Service) GetTagByName(ctx context.Context, name string) (models.Tag, error) {
	tag, err := s.stores.Tags.FindByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return models.Tag{}, s.fail("find tag", err, ErrTagNotFound, ErrFetchTags)
	}
	return tag, nil
}
