package domain

import "strings"

// CategoryUncategorized is assigned when the classifier gives no usable category.
const CategoryUncategorized = "Uncategorized"

// Categories is the closed set of labels the classifier is asked to choose from.
var Categories = []string{
	"Car",
	"Cash Out",
	"Communication",
	"Divertisment",
	"Education",
	"Food",
	"Gifts",
	"Health",
	"Insurance",
	"Nicotine",
	"Personal",
	"Rent",
	"Revolut",
	"Restaurant",
	"Shopping",
	"Sport",
	"Subscriptions",
	"Supermarket",
	"Transport",
	"Travel",
	"Utilities",
}

var categoryIndex = func() map[string]string {
	idx := make(map[string]string, len(Categories))
	for _, c := range Categories {
		idx[strings.ToLower(c)] = c
	}
	return idx
}()

// NormalizeCategory returns the canonical label for s, or CategoryUncategorized
// when s is empty or not one of Categories.
func NormalizeCategory(s string) string {
	if c, ok := categoryIndex[strings.ToLower(strings.TrimSpace(s))]; ok {
		return c
	}
	return CategoryUncategorized
}
