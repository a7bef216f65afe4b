package core

import "testing"

func TestMapCategory(t *testing.T) {
	cases := []struct {
		in   string
		want CategoryID
	}{
		{"groceries", CategoryGroceries},
		{"Tithes & Offerings", CategoryTithes},
		{"Sunday offering", CategoryTithes},
		{"Whole Foods grocery", CategoryGroceries},
		{"Car payment", CategoryTransportation},
		{"Netflix", CategorySubscriptions},
		{"monthly salary", CategoryIncome},
		{"Education", CategoryEducation},
		{"Insurance premium", CategoryInsurance},
		{"", CategoryOther},
		{"zzz", CategoryOther},
	}
	for _, tc := range cases {
		if got := MapCategory(tc.in); got != tc.want {
			t.Fatalf("%q expected %s, got %s", tc.in, tc.want, got)
		}
	}
}

func TestCategoryCatalog(t *testing.T) {
	if len(Categories) != 22 {
		t.Fatalf("expected 22 categories, got %d", len(Categories))
	}
	if !CategorySavings.Valid() || CategoryID("nope").Valid() {
		t.Fatalf("validity lookup broken")
	}
	if CategoryOrder("nope") != len(Categories) {
		t.Fatalf("unknown categories should sort last")
	}
	if LookupCategory(CategoryDining).Name != "Dining" {
		t.Fatalf("lookup broken")
	}
}
