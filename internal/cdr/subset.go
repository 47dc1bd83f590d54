package cdr

import "fmt"

// AnyCategory selects every age category or both sexes.
const AnyCategory = 99

// Sex codes used by SelectSubscribers.
const (
	Female = 0
	Male   = 1
)

// AgeCategories are the lower bounds of the age bands, followed by
// AnyCategory. The first band also holds every age below 20.
var AgeCategories = []int{0, 20, 30, 40, 50, 60, AnyCategory}

// AgeCategory maps an age onto its band: 0 (under 20), 20, 30, 40, 50 or
// 60 (60 and over). A missing age returns AnyCategory and never matches a
// specific band.
func AgeCategory(age int) int {
	switch {
	case age == MissingAge:
		return AnyCategory
	case age < 20:
		return 0
	case age >= 60:
		return 60
	default:
		return age / 10 * 10
	}
}

// SexCode returns Male, Female or AnyCategory for an attribute row given the
// identifiers used for each sex.
func SexCode(a Attribute, maleID, femaleID string) int {
	switch a.Gender {
	case maleID:
		return Male
	case femaleID:
		return Female
	default:
		return AnyCategory
	}
}

// SelectSubscribers returns the numbers whose age band and sex match. Pass
// AnyCategory for either criterion to ignore it. Rows with a missing value in
// a filtered column never match that filter.
func SelectSubscribers(attrs []Attribute, ageCat, male int, maleID, femaleID string) ([]int64, error) {
	if !validAgeCategory(ageCat) {
		return nil, fmt.Errorf("invalid age category %d", ageCat)
	}
	if male != Male && male != Female && male != AnyCategory {
		return nil, fmt.Errorf("invalid sex code %d", male)
	}
	var out []int64
	for _, a := range attrs {
		if ageCat != AnyCategory && AgeCategory(a.Age) != ageCat {
			continue
		}
		if male != AnyCategory && SexCode(a, maleID, femaleID) != male {
			continue
		}
		out = append(out, a.Number)
	}
	return out, nil
}

func validAgeCategory(c int) bool {
	for _, v := range AgeCategories {
		if v == c {
			return true
		}
	}
	return false
}

// AgeSexSubsets returns 21 subscriber lists: for all sexes, then males, then
// females, one list per entry of AgeCategories. Index 6 is everyone, 13 all
// males and 20 all females.
func AgeSexSubsets(attrs []Attribute, maleID, femaleID string) [][]int64 {
	out := make([][]int64, 0, 3*len(AgeCategories))
	for _, sex := range []int{AnyCategory, Male, Female} {
		for _, age := range AgeCategories {
			// Both arguments come from the valid sets above.
			sub, _ := SelectSubscribers(attrs, age, sex, maleID, femaleID)
			out = append(out, sub)
		}
	}
	return out
}
