package listing

import (
	"sort"
	"strings"

	"mindease/models"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type SortKey string

const (
	SortNameAsc        SortKey = "name-asc"
	SortNameDesc       SortKey = "name-desc"
	SortExperienceAsc  SortKey = "experience-asc"
	SortExperienceDesc SortKey = "experience-desc"
	SortRatingAsc      SortKey = "rating-asc"
	SortRatingDesc     SortKey = "rating-desc"

	DefaultSort = SortRatingDesc
)

func (k SortKey) Valid() bool {
	switch k {
	case SortNameAsc, SortNameDesc, SortExperienceAsc, SortExperienceDesc, SortRatingAsc, SortRatingDesc:
		return true
	}
	return false
}

// TherapistQuery is the search, filter and sort state of the therapist list.
type TherapistQuery struct {
	Search      string   `json:"search"`
	Specialties []string `json:"specialties"`
	Sort        SortKey  `json:"sort"`
}

// FilterTherapists keeps therapists whose full name contains the search text
// (case-insensitive) and who carry at least one of the selected specialties.
// No selected specialty means no specialty filter.
func FilterTherapists(list []models.TherapistProfile, q TherapistQuery) []models.TherapistProfile {
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	wanted := make(map[string]struct{}, len(q.Specialties))
	for _, s := range q.Specialties {
		if s = strings.TrimSpace(s); s != "" {
			wanted[strings.ToLower(s)] = struct{}{}
		}
	}

	out := make([]models.TherapistProfile, 0, len(list))
	for _, t := range list {
		if needle != "" && !strings.Contains(strings.ToLower(t.FullName), needle) {
			continue
		}
		if len(wanted) > 0 && !hasAny(t, wanted) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func hasAny(t models.TherapistProfile, wanted map[string]struct{}) bool {
	for _, s := range t.Specializations {
		if _, ok := wanted[strings.ToLower(strings.TrimSpace(s.Name))]; ok {
			return true
		}
	}
	return false
}

// SortTherapists orders list in place. Names compare with an English
// collator ignoring case; a missing rating or experience counts as 0.
func SortTherapists(list []models.TherapistProfile, key SortKey) {
	if !key.Valid() {
		key = DefaultSort
	}
	col := collate.New(language.English, collate.IgnoreCase)
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		switch key {
		case SortNameAsc:
			return col.CompareString(a.FullName, b.FullName) < 0
		case SortNameDesc:
			return col.CompareString(a.FullName, b.FullName) > 0
		case SortExperienceAsc:
			return a.YearsOfExperience < b.YearsOfExperience
		case SortExperienceDesc:
			return a.YearsOfExperience > b.YearsOfExperience
		case SortRatingAsc:
			return a.RatingValue() < b.RatingValue()
		default:
			return a.RatingValue() > b.RatingValue()
		}
	})
}

// BrowseTherapists filters, sorts and paginates in one go.
func BrowseTherapists(list []models.TherapistProfile, q TherapistQuery, page int) Page[models.TherapistProfile] {
	filtered := FilterTherapists(list, q)
	SortTherapists(filtered, q.Sort)
	return Paginate(filtered, page, TherapistPageSize)
}

// AllSpecialties collects the distinct specialty tags, sorted by name.
func AllSpecialties(list []models.TherapistProfile) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, t := range list {
		for _, s := range t.Specializations {
			name := strings.TrimSpace(s.Name)
			if name == "" {
				continue
			}
			if _, ok := seen[strings.ToLower(name)]; ok {
				continue
			}
			seen[strings.ToLower(name)] = struct{}{}
			out = append(out, name)
		}
	}
	col := collate.New(language.English, collate.IgnoreCase)
	col.SortStrings(out)
	return out
}
