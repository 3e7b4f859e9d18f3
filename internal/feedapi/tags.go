package feedapi

// ItemCategory is a flat, user-manageable tag on items.
type ItemCategory struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// ParentCategory is a synthetic grouping of item categories by fixed ID
// ranges. Parents use reserved negative IDs and are never persisted; range
// membership is computed on demand.
type ParentCategory struct {
	ID    int64
	Title string
	MinID int64
	MaxID int64
}

var ParentCategories = []ParentCategory{
	{ID: -1, Title: "Topics", MinID: 1, MaxID: 999},
	{ID: -2, Title: "People", MinID: 1000, MaxID: 1999},
	{ID: -3, Title: "Places", MinID: 2000, MaxID: 2999},
	{ID: -4, Title: "Other", MinID: 3000, MaxID: 1<<62 - 1},
}

func (p ParentCategory) Contains(ic ItemCategory) bool {
	return ic.ID >= p.MinID && ic.ID <= p.MaxID
}

// ParentOf resolves the synthetic parent owning the given tag.
func ParentOf(ic ItemCategory) (ParentCategory, bool) {
	for _, p := range ParentCategories {
		if p.Contains(ic) {
			return p, true
		}
	}
	return ParentCategory{}, false
}

// ChildrenOf selects the tags bucketed under one parent, preserving input
// order.
func ChildrenOf(p ParentCategory, all []ItemCategory) []ItemCategory {
	out := make([]ItemCategory, 0, len(all))
	for _, ic := range all {
		if p.Contains(ic) {
			out = append(out, ic)
		}
	}
	return out
}
