package review

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deckforge/internal/models"
)

func contentSlide(number int, title, body string) models.Slide {
	return models.Slide{SlideNumber: number, Title: title, Body: body, SlideType: models.SlideContent}
}

func issuesOfKind(issues []StructuralIssue, kind string) []StructuralIssue {
	var out []StructuralIssue
	for _, i := range issues {
		if i.Kind == kind {
			out = append(out, i)
		}
	}
	return out
}

func TestOrphanedSplitMarkerRenamedToPlainTitle(t *testing.T) {
	slides := []models.Slide{
		contentSlide(1, "Intro", "- a"),
		contentSlide(2, "Background", "- b"),
		contentSlide(3, "Market", "- c"),
		contentSlide(4, "Risks (1/2)", "- d"),
	}

	issues, fixes := CheckStructure(slides, 6)

	orphaned := issuesOfKind(issues, IssueOrphanedSplit)
	require.Len(t, orphaned, 1)
	assert.Equal(t, 4, orphaned[0].SlideNumber)

	require.Len(t, fixes, 1)
	assert.Equal(t, FixReplaceTitle, fixes[0].Mode)
	assert.Equal(t, "Risks (1/2)", fixes[0].Original)
	assert.Equal(t, "Risks", fixes[0].Fixed, "a single surviving part loses its marker entirely")
}

func TestOrphanedSplitMarkersRenumbered(t *testing.T) {
	slides := []models.Slide{
		contentSlide(1, "Risks (1/3)", "- a"),
		contentSlide(2, "Risks (2/3)", "- b"),
	}

	issues, fixes := CheckStructure(slides, 6)

	assert.Len(t, issuesOfKind(issues, IssueOrphanedSplit), 2)
	require.Len(t, fixes, 2)
	assert.Equal(t, "Risks (1/2)", fixes[0].Fixed)
	assert.Equal(t, "Risks (2/2)", fixes[1].Fixed)
}

func TestCompleteSplitGroupIsLeftAlone(t *testing.T) {
	slides := []models.Slide{
		contentSlide(1, "Risks (1/2)", "- a"),
		contentSlide(2, "Risks (2/2)", "- b"),
	}

	issues, fixes := CheckStructure(slides, 6)
	assert.Empty(t, issuesOfKind(issues, IssueOrphanedSplit))
	assert.Empty(t, fixes)
}

func TestComponentOverflowTruncated(t *testing.T) {
	body := "Compare:\n- one\n- two\n- three\n- four"
	slides := []models.Slide{
		{SlideNumber: 1, Title: "A vs B", Body: body, SlideType: models.SlideComparison},
	}

	issues, fixes := CheckStructure(slides, 3)

	require.Len(t, issuesOfKind(issues, IssueComponentOverflow), 1)
	require.Len(t, fixes, 1)
	assert.Equal(t, FixReplaceBody, fixes[0].Mode)
	assert.Equal(t, 3, strings.Count(fixes[0].Fixed, "- "))
	assert.Contains(t, fixes[0].Fixed, "Compare:", "non-item lines are kept")
}

func TestOverflowIgnoredOnUnconstrainedTypes(t *testing.T) {
	body := "- one\n- two\n- three\n- four"
	slides := []models.Slide{contentSlide(1, "List", body)}

	issues, fixes := CheckStructure(slides, 3)
	assert.Empty(t, issuesOfKind(issues, IssueComponentOverflow))
	assert.Empty(t, fixes)
}

func TestEmptyBodyReportedNotFixed(t *testing.T) {
	slides := []models.Slide{
		contentSlide(1, "Has a title", ""),
		{SlideNumber: 2, Title: "Quote slide", Body: "", SlideType: models.SlideQuote},
	}

	issues, fixes := CheckStructure(slides, 6)

	empty := issuesOfKind(issues, IssueEmptyBody)
	require.Len(t, empty, 1, "minimal types are allowed to have empty bodies")
	assert.Equal(t, 1, empty[0].SlideNumber)
	assert.Empty(t, fixes)
}

func TestDuplicateTitlesWarnFromSecondOccurrence(t *testing.T) {
	slides := []models.Slide{
		contentSlide(1, "Summary", "- a"),
		contentSlide(2, "summary", "- b"),
		contentSlide(3, "Summary", "- c"),
	}

	issues, _ := CheckStructure(slides, 6)

	dups := issuesOfKind(issues, IssueDuplicateTitle)
	require.Len(t, dups, 2)
	assert.Equal(t, 2, dups[0].SlideNumber)
	assert.Equal(t, 3, dups[1].SlideNumber)
	assert.True(t, dups[0].Warning)
}

func TestMissingCallToActionWarning(t *testing.T) {
	slides := []models.Slide{
		contentSlide(1, "Intro", "- a"),
		contentSlide(2, "Close", "- b"),
	}

	issues, _ := CheckStructure(slides, 6)
	require.Len(t, issuesOfKind(issues, IssueMissingCTA), 1)

	slides = append(slides, models.Slide{SlideNumber: 3, Title: "Next steps", SlideType: models.SlideCallToAction})
	issues, _ = CheckStructure(slides, 6)
	assert.Empty(t, issuesOfKind(issues, IssueMissingCTA))
}
