package models

// SlidePlanItem is one entry of the ordered slide plan produced by the
// outline stage, before any content is realized.
type SlidePlanItem struct {
	SlideNumber  int       `json:"slideNumber"`
	Title        string    `json:"title"`
	Bullets      []string  `json:"bullets"`
	SlideType    SlideType `json:"slideType"`
	SectionLabel string    `json:"sectionLabel,omitempty"`
}

// RenumberPlan rewrites SlideNumber so the items form an unbroken 1..N
// sequence matching array order. Call it after every insert, delete, or
// truncate of a plan.
func RenumberPlan(items []SlidePlanItem) {
	for i := range items {
		items[i].SlideNumber = i + 1
	}
}
