package views

import (
	"strings"

	"github.com/dmitrijs2005/expertconnect/internal/client/models"
)

// ExpertFilter keeps experts with a skill named like the category. A zero
// categoryID keeps everyone; an unknown one matches nobody.
func ExpertFilter(users []models.User, categories []models.Category, categoryID int) []models.User {
	if categoryID == 0 {
		return users
	}

	var name string
	for _, c := range categories {
		if c.ID == categoryID {
			name = c.Name
			break
		}
	}
	if name == "" {
		return nil
	}

	var out []models.User
	for _, u := range users {
		for _, s := range u.Skills {
			if strings.EqualFold(s.SkillName, name) {
				out = append(out, u)
				break
			}
		}
	}
	return out
}
