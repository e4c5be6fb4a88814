package usda

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// defaultSearchTerms maps basket item names to USDA-style search phrases
var defaultSearchTerms = map[string]string{
	"Whole Wheat":            "whole wheat bread",
	"Brown Rice":             "brown rice cooked",
	"Quinoa":                 "quinoa cooked",
	"Chickpeas (Dry)":        "chickpeas cooked",
	"Lentils (Dry)":          "lentils cooked",
	"Greek Yogurt":           "greek yogurt plain nonfat",
	"Spinach":                "spinach raw",
	"Broccoli":               "broccoli raw",
	"Carrots":                "carrots raw",
	"Apples":                 "apples raw with skin",
	"Bananas":                "bananas raw",
	"Tofu":                   "tofu firm",
	"Oats":                   "oats dry",
	"Peanut Butter":          "peanut butter smooth",
	"Olive Oil":              "olive oil",
	"Frozen Pizza":           "pizza cheese frozen baked",
	"Soda":                   "carbonated beverage cola",
	"Chips":                  "potato chips",
	"Instant Noodles":        "ramen noodle soup prepared",
	"Sugary Cereal":          "ready to eat cereal sweetened",
	"Ice Cream":              "ice cream vanilla",
	"Candy":                  "chocolate candy",
	"White Bread":            "white bread",
	"Processed Cheese Slice": "american cheese processed",
	"Chicken Nuggets":        "chicken nuggets fried",
	"Energy Drink":           "energy drink",
	"Microwave Popcorn":      "popcorn microwave",
	"Hot Dogs":               "frankfurter beef",
	"Chocolate Cookies":      "chocolate sandwich cookies",
	"Mac and Cheese":         "macaroni and cheese prepared",
	"Pasta":                  "spaghetti cooked",
	"Tomato Sauce":           "tomato sauce canned",
	"Milk":                   "milk 2 percent",
	"Potatoes":               "potatoes white flesh baked",
	"White Rice":             "white rice cooked",
	"Tortillas":              "flour tortillas",
	"Butter":                 "butter salted",
	"Canned Corn":            "corn canned",
	"Canned Beans":           "black beans canned",
	"Onions":                 "onions raw",
	"Eggs":                   "egg whole raw",
	"Snack Crackers":         "snack crackers",
	"Flour":                  "wheat flour all purpose",
	"Sugar":                  "sugar granulated",
}

// SearchTerms resolves the USDA search phrase for a basket item
type SearchTerms struct {
	terms map[string]string
}

// searchTermsFile is the TOML layout of an override file:
//
//	[terms]
//	"Brown Rice" = "rice brown long grain cooked"
type searchTermsFile struct {
	Terms map[string]string `toml:"terms"`
}

// DefaultSearchTerms returns the built-in term table
func DefaultSearchTerms() *SearchTerms {
	terms := make(map[string]string, len(defaultSearchTerms))
	for k, v := range defaultSearchTerms {
		terms[k] = v
	}
	return &SearchTerms{terms: terms}
}

// LoadSearchTerms returns the built-in table with overrides from a TOML
// file applied on top. An empty path returns the defaults.
func LoadSearchTerms(path string) (*SearchTerms, error) {
	st := DefaultSearchTerms()
	if path == "" {
		return st, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read search terms: %w", err)
	}

	var file searchTermsFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse search terms %s: %w", path, err)
	}
	for item, term := range file.Terms {
		st.terms[item] = term
	}
	return st, nil
}

// Term returns the search phrase for item, or the item name itself when
// no mapping exists
func (s *SearchTerms) Term(item string) string {
	if term, ok := s.terms[item]; ok && term != "" {
		return term
	}
	return item
}

// Len reports how many items have an explicit mapping
func (s *SearchTerms) Len() int { return len(s.terms) }
