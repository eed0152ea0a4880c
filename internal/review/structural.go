package review

import (
	"fmt"
	"regexp"
	"strings"

	"deckforge/internal/models"
)

// splitMarkerRe matches titles like "Risks (1/2)": a base title plus a
// part/total split marker.
var splitMarkerRe = regexp.MustCompile(`^(.*?)\s*\((\d+)\s*/\s*(\d+)\)$`)

// CheckStructure is the programmatic structural-integrity agent. It never
// calls an external generator and always runs. maxItems caps the bullet
// count on layout-constrained slide types.
func CheckStructure(slides []models.Slide, maxItems int) ([]StructuralIssue, []Fix) {
	if maxItems <= 0 {
		maxItems = 6
	}
	var issues []StructuralIssue
	var fixes []Fix

	issues, fixes = checkSplitMarkers(slides, issues, fixes)

	seenTitles := make(map[string]int)
	for i := range slides {
		s := &slides[i]

		// (b) component overflow on layout-constrained types
		if s.SlideType.LayoutConstrained() {
			if truncated, n, ok := truncateItems(s.Body, maxItems); ok {
				issues = append(issues, StructuralIssue{
					SlideNumber: s.SlideNumber,
					Kind:        IssueComponentOverflow,
					Message:     fmt.Sprintf("slide %d has %d items, cap is %d", s.SlideNumber, n, maxItems),
				})
				fixes = append(fixes, Fix{
					SlideNumber: s.SlideNumber,
					Agent:       AgentStructural,
					Mode:        FixReplaceBody,
					Original:    s.Body,
					Fixed:       truncated,
				})
			}
		}

		// (c) non-empty title with empty body; reported, never auto-fixed
		if strings.TrimSpace(s.Title) != "" && strings.TrimSpace(s.Body) == "" && !s.SlideType.Minimal() {
			issues = append(issues, StructuralIssue{
				SlideNumber: s.SlideNumber,
				Kind:        IssueEmptyBody,
				Message:     fmt.Sprintf("slide %d has a title but no body", s.SlideNumber),
			})
		}

		// (d) duplicate titles; warn on the second and later occurrences
		norm := strings.ToLower(strings.TrimSpace(s.Title))
		if norm != "" {
			if first, dup := seenTitles[norm]; dup {
				issues = append(issues, StructuralIssue{
					SlideNumber: s.SlideNumber,
					Kind:        IssueDuplicateTitle,
					Message:     fmt.Sprintf("slide %d duplicates the title of slide %d", s.SlideNumber, first),
					Warning:     true,
				})
			} else {
				seenTitles[norm] = s.SlideNumber
			}
		}
	}

	// (e) a deck should close on a call to action; warning only
	if n := len(slides); n > 0 && slides[n-1].SlideType != models.SlideCallToAction {
		issues = append(issues, StructuralIssue{
			SlideNumber: slides[n-1].SlideNumber,
			Kind:        IssueMissingCTA,
			Message:     "deck does not end with a call-to-action slide",
			Warning:     true,
		})
	}

	return issues, fixes
}

// checkSplitMarkers finds orphaned "(part/total)" titles: groups claiming
// more parts than actually exist get their markers rewritten, and dropped
// entirely when only one part remains.
func checkSplitMarkers(slides []models.Slide, issues []StructuralIssue, fixes []Fix) ([]StructuralIssue, []Fix) {
	type member struct {
		idx     int
		claimed int
	}
	groups := make(map[string][]member)
	var order []string
	for i := range slides {
		m := splitMarkerRe.FindStringSubmatch(strings.TrimSpace(slides[i].Title))
		if m == nil {
			continue
		}
		base := m[1]
		claimed := atoiSafe(m[3])
		if _, ok := groups[base]; !ok {
			order = append(order, base)
		}
		groups[base] = append(groups[base], member{idx: i, claimed: claimed})
	}

	for _, base := range order {
		members := groups[base]
		actual := len(members)
		orphaned := false
		for _, m := range members {
			if m.claimed > actual {
				orphaned = true
				break
			}
		}
		if !orphaned {
			continue
		}
		for part, m := range members {
			s := &slides[m.idx]
			newTitle := base
			if actual > 1 {
				newTitle = fmt.Sprintf("%s (%d/%d)", base, part+1, actual)
			}
			if newTitle == s.Title {
				continue
			}
			issues = append(issues, StructuralIssue{
				SlideNumber: s.SlideNumber,
				Kind:        IssueOrphanedSplit,
				Message:     fmt.Sprintf("slide %d claims a %d-part split but only %d part(s) exist", s.SlideNumber, m.claimed, actual),
			})
			fixes = append(fixes, Fix{
				SlideNumber: s.SlideNumber,
				Agent:       AgentStructural,
				Mode:        FixReplaceTitle,
				Original:    s.Title,
				Fixed:       newTitle,
			})
		}
	}
	return issues, fixes
}

// truncateItems drops bullet lines beyond the cap, keeping everything else.
// Returns ok=false when the body is already within the cap.
func truncateItems(body string, maxItems int) (string, int, bool) {
	lines := strings.Split(body, "\n")
	total := 0
	for _, l := range lines {
		if isItemLine(l) {
			total++
		}
	}
	if total <= maxItems {
		return "", total, false
	}
	var kept []string
	seen := 0
	for _, l := range lines {
		if isItemLine(l) {
			seen++
			if seen > maxItems {
				continue
			}
		}
		kept = append(kept, l)
	}
	return strings.Join(kept, "\n"), total, true
}

func isItemLine(line string) bool {
	t := strings.TrimSpace(line)
	return strings.HasPrefix(t, "- ") || strings.HasPrefix(t, "* ")
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
