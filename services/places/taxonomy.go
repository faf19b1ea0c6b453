package places

import (
	"strings"

	"wandr/models"
)

// typeToCategory folds provider venue type strings into the fixed activity
// taxonomy. The mapping is total: anything not listed lands on CategoryOther.
var typeToCategory = map[string]models.Category{
	"restaurant":         models.CategoryDining,
	"cafe":               models.CategoryDining,
	"bakery":             models.CategoryDining,
	"meal_takeaway":      models.CategoryDining,
	"food":               models.CategoryDining,
	"bar":                models.CategorySocial,
	"night_club":         models.CategorySocial,
	"movie_theater":      models.CategoryEntertainment,
	"cinema":             models.CategoryEntertainment,
	"museum":             models.CategoryEntertainment,
	"art_gallery":        models.CategoryEntertainment,
	"amusement_park":     models.CategoryEntertainment,
	"bowling_alley":      models.CategoryEntertainment,
	"gym":                models.CategoryFitness,
	"stadium":            models.CategoryFitness,
	"park":               models.CategoryFitness,
	"spa":                models.CategoryPersonal,
	"beauty_salon":       models.CategoryPersonal,
	"shopping_mall":      models.CategoryPersonal,
	"store":              models.CategoryPersonal,
	"library":            models.CategoryWork,
	"coworking_space":    models.CategoryWork,
	"tourist_attraction": models.CategoryTravel,
	"lodging":            models.CategoryTravel,
	"travel_agency":      models.CategoryTravel,
}

// categoryFor maps the first recognized provider type to a taxonomy
// category, defaulting to other.
func categoryFor(providerTypes []string) models.Category {
	for _, t := range providerTypes {
		if c, ok := typeToCategory[strings.ToLower(strings.TrimSpace(t))]; ok {
			return c
		}
	}
	return models.CategoryOther
}

// primaryType returns the first provider type string, used to key the
// estimated-hours defaults.
func primaryType(providerTypes []string) string {
	if len(providerTypes) == 0 {
		return ""
	}
	return providerTypes[0]
}

// categoryToSearchKeyword translates a taxonomy filter back into a provider
// search keyword.
var categoryToSearchKeyword = map[models.Category]string{
	models.CategoryDining:        "restaurant",
	models.CategoryEntertainment: "movie_theater",
	models.CategoryFitness:       "gym",
	models.CategorySocial:        "bar",
	models.CategoryWork:          "library",
	models.CategoryPersonal:      "spa",
	models.CategoryTravel:        "tourist_attraction",
}
