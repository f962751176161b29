package resumes

import (
	"time"

	"github.com/google/uuid"
)

const (
	defaultTemplateID = "modern"
	defaultThemeColor = "#2563eb"
)

// NewDefault returns a seeded document for a user starting from scratch.
// The document keeps SentinelID until its first save.
func NewDefault(now time.Time) Document {
	return Document{
		ID:           SentinelID,
		Title:        "My Resume",
		LastModified: now.UnixMilli(),
		TemplateID:   defaultTemplateID,
		ThemeColor:   defaultThemeColor,
		PersonalInfo: PersonalInfo{
			FullName: "Your Name",
			Title:    "Professional Title",
			Email:    "you@example.com",
			Phone:    "+1 555 0100",
			Location: "City, Country",
			Summary:  "A short summary of your experience and what you are looking for.",
		},
		Experience: []Experience{{
			ID:          uuid.NewString(),
			Company:     "Company Name",
			Role:        "Job Title",
			StartDate:   "2022",
			Current:     true,
			Description: "Describe your responsibilities and achievements.",
		}},
		Education: []Education{{
			ID:          uuid.NewString(),
			Institution: "University Name",
			Degree:      "Bachelor's Degree",
			Field:       "Field of Study",
			Year:        "2020",
		}},
		Skills: []Skill{{
			ID:    uuid.NewString(),
			Name:  "Communication",
			Level: SkillAdvanced,
		}},
		Languages: []Language{{
			ID:    uuid.NewString(),
			Name:  "English",
			Level: LanguageFluent,
		}},
		Projects: []Project{{
			ID:          uuid.NewString(),
			Name:        "Project Name",
			Description: "What the project does and your role in it.",
		}},
	}
}
