package core

import "strings"

// categoryAliases maps free-text fragments found in bank exports to catalog ids.
// Order matters: the first alias contained in the label wins.
var categoryAliases = []struct {
	alias string
	id    CategoryID
}{
	{"tithe", CategoryTithes}, {"offering", CategoryTithes}, {"church", CategoryTithes},
	{"donation", CategoryGifts}, {"gift", CategoryGifts}, {"charity", CategoryGifts},
	{"baby", CategoryChildcare}, {"daycare", CategoryChildcare}, {"child", CategoryChildcare}, {"kids", CategoryChildcare},
	{"pet", CategoryPets}, {"dog", CategoryPets}, {"vet", CategoryPets},
	{"hair", CategoryPersonal}, {"salon", CategoryPersonal}, {"spa", CategoryPersonal},
	{"gym", CategoryHealthcare}, {"medical", CategoryHealthcare}, {"doctor", CategoryHealthcare}, {"pharmacy", CategoryHealthcare},
	{"car", CategoryTransportation}, {"auto", CategoryTransportation}, {"gas", CategoryTransportation}, {"fuel", CategoryTransportation},
	{"uber", CategoryTransportation}, {"lyft", CategoryTransportation},
	{"food", CategoryGroceries}, {"grocery", CategoryGroceries}, {"supermarket", CategoryGroceries},
	{"restaurant", CategoryDining}, {"coffee", CategoryDining}, {"cafe", CategoryDining}, {"takeout", CategoryDining},
	{"netflix", CategorySubscriptions}, {"spotify", CategorySubscriptions}, {"hulu", CategorySubscriptions},
	{"amazon", CategoryShopping}, {"walmart", CategoryShopping}, {"target", CategoryShopping},
	{"rent", CategoryHousing}, {"mortgage", CategoryHousing},
	{"electric", CategoryUtilities}, {"water", CategoryUtilities}, {"internet", CategoryUtilities}, {"phone", CategoryUtilities},
	{"salary", CategoryIncome}, {"paycheck", CategoryIncome}, {"wages", CategoryIncome}, {"freelance", CategoryIncome},
}

// MapCategory resolves a free-text category label to a catalog id.
//
// Resolution order: exact id or display name, alias fragment, partial name
// match, then CategoryOther.
func MapCategory(label string) CategoryID {
	lower := strings.ToLower(strings.TrimSpace(label))
	if lower == "" {
		return CategoryOther
	}
	for _, c := range Categories {
		if string(c.ID) == lower || strings.ToLower(c.Name) == lower {
			return c.ID
		}
	}
	for _, a := range categoryAliases {
		if strings.Contains(lower, a.alias) {
			return a.id
		}
	}
	for _, c := range Categories {
		name := strings.ToLower(c.Name)
		if strings.Contains(name, lower) || strings.Contains(lower, string(c.ID)) || strings.Contains(lower, name) {
			return c.ID
		}
	}
	return CategoryOther
}
