package diagnostics

import "sort"

// GroupCatalog arranges definitions by category and subcategory. Categories
// keep the order in which they first appear in defs; subcategories and the
// tests inside them are sorted by name.
func GroupCatalog(defs []*TestDefinition) []CategoryGroup {
	var order []string
	bySub := make(map[string]map[string][]CatalogTest)

	for _, d := range defs {
		subs, ok := bySub[d.Category]
		if !ok {
			subs = make(map[string][]CatalogTest)
			bySub[d.Category] = subs
			order = append(order, d.Category)
		}
		subs[d.Subcategory] = append(subs[d.Subcategory], CatalogTest{
			ID:             d.ID,
			Name:           d.Name,
			ReferenceRange: d.ReferenceRange,
			Unit:           d.Unit,
			Price:          d.Price,
		})
	}

	groups := make([]CategoryGroup, 0, len(order))
	for _, cat := range order {
		subs := bySub[cat]
		names := make([]string, 0, len(subs))
		for name := range subs {
			names = append(names, name)
		}
		sort.Strings(names)

		g := CategoryGroup{Category: cat, Subcategories: make([]SubcategoryGroup, 0, len(names))}
		for _, name := range names {
			tests := subs[name]
			sort.SliceStable(tests, func(i, j int) bool { return tests[i].Name < tests[j].Name })
			g.Subcategories = append(g.Subcategories, SubcategoryGroup{Subcategory: name, Tests: tests})
		}
		groups = append(groups, g)
	}
	return groups
}
