package usecase

import "github.com/kirillkom/deductive-coding/internal/core/domain"

// BackfillFingerprints assigns a fingerprint to every tag lacking one.
// When nothing is missing the input slice is returned as is; otherwise a new
// slice is returned and the input is left untouched.
func BackfillFingerprints(tags []domain.Tag) []domain.Tag {
	var out []domain.Tag
	for i, tag := range tags {
		filled, changed := tag.WithFingerprint()
		if !changed {
			continue
		}
		if out == nil {
			out = domain.CloneTags(tags)
		}
		out[i] = filled
	}
	if out == nil {
		return tags
	}
	return out
}

// SelectForAnalysis returns the indexes of tags needing work, in collection order.
func SelectForAnalysis(tags []domain.Tag) []int {
	selected := make([]int, 0, len(tags))
	for i, tag := range tags {
		if tag.NeedsAnalysis() {
			selected = append(selected, i)
		}
	}
	return selected
}

// PlanAnalysis summarizes what a run over tags would do without mutating them.
func PlanAnalysis(tags []domain.Tag) domain.AnalysisPlan {
	tags = BackfillFingerprints(tags)
	return planFor(tags, SelectForAnalysis(tags))
}

func planFor(tags []domain.Tag, selected []int) domain.AnalysisPlan {
	ids := make([]string, 0, len(selected))
	for _, idx := range selected {
		ids = append(ids, tags[idx].ID)
	}
	inProgress := 0
	for _, tag := range tags {
		if !tag.NeedsAnalysis() && tag.Status == domain.TagStatusProcessing {
			inProgress++
		}
	}
	return domain.AnalysisPlan{
		Total:         len(tags),
		NeedsAnalysis: len(selected),
		UpToDate:      len(tags) - len(selected) - inProgress,
		InProgress:    inProgress,
		AllUpToDate:   len(selected) == 0 && inProgress == 0,
		SelectedIDs:   ids,
	}
}
