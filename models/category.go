package models

import (
	"database/sql/driver"

	"github.com/go-playground/validator"
)

type Category string

const (
	CategoryTops        Category = "Tops"
	CategoryBottoms     Category = "Bottoms"
	CategoryOuterwear   Category = "Outerwear"
	CategoryFootwear    Category = "Footwear"
	CategoryAccessories Category = "Accessories"
)

var Categories = []Category{CategoryTops, CategoryBottoms, CategoryOuterwear, CategoryFootwear, CategoryAccessories}

func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c *Category) Scan(value interface{}) error {
	s, err := scanString(value)
	if err != nil {
		return err
	}
	*c = Category(s)
	return nil
}

func (c Category) Value() (driver.Value, error) {
	return string(c), nil
}

type Season string

const (
	SeasonSpring    Season = "Spring"
	SeasonSummer    Season = "Summer"
	SeasonAutumn    Season = "Autumn"
	SeasonWinter    Season = "Winter"
	SeasonAllSeason Season = "All-Season"
)

var Seasons = []Season{SeasonSpring, SeasonSummer, SeasonAutumn, SeasonWinter, SeasonAllSeason}

func (s Season) IsValid() bool {
	for _, known := range Seasons {
		if s == known {
			return true
		}
	}
	return false
}

func (s *Season) Scan(value interface{}) error {
	v, err := scanString(value)
	if err != nil {
		return err
	}
	*s = Season(v)
	return nil
}

func (s Season) Value() (driver.Value, error) {
	return string(s), nil
}

type Occasion string

const (
	OccasionCasual Occasion = "Casual"
	OccasionFormal Occasion = "Formal"
	OccasionSporty Occasion = "Sporty"
	OccasionWork   Occasion = "Work"
	OccasionParty  Occasion = "Party"
)

var Occasions = []Occasion{OccasionCasual, OccasionFormal, OccasionSporty, OccasionWork, OccasionParty}

func (o Occasion) IsValid() bool {
	for _, known := range Occasions {
		if o == known {
			return true
		}
	}
	return false
}

func (o *Occasion) Scan(value interface{}) error {
	s, err := scanString(value)
	if err != nil {
		return err
	}
	*o = Occasion(s)
	return nil
}

func (o Occasion) Value() (driver.Value, error) {
	return string(o), nil
}

func ValidateCategory(fl validator.FieldLevel) bool {
	return Category(fl.Field().String()).IsValid()
}

func ValidateSeason(fl validator.FieldLevel) bool {
	return Season(fl.Field().String()).IsValid()
}

func ValidateOccasion(fl validator.FieldLevel) bool {
	return Occasion(fl.Field().String()).IsValid()
}
