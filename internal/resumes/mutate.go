package resumes

import (
	"fmt"

	"github.com/google/uuid"
)

// Mutators never modify their input; each returns a new Document so callers
// can detect changes by comparing values.

// DocumentPatch sets top-level scalar fields. Nil fields are left unchanged.
type DocumentPatch struct {
	Title         *string           `json:"title,omitempty"`
	TemplateID    *string           `json:"templateId,omitempty"`
	ThemeColor    *string           `json:"themeColor,omitempty"`
	Font          *string           `json:"font,omitempty"`
	SectionLabels map[string]string `json:"sectionLabels,omitempty"`
}

// ApplyDocumentPatch returns doc with the patch applied. Section labels are
// merged key by key; an empty value removes the override.
func ApplyDocumentPatch(doc Document, p DocumentPatch) Document {
	out := doc.Clone()
	setString(&out.Title, p.Title)
	setString(&out.TemplateID, p.TemplateID)
	setString(&out.ThemeColor, p.ThemeColor)
	setString(&out.Font, p.Font)
	if len(p.SectionLabels) > 0 {
		if out.SectionLabels == nil {
			out.SectionLabels = make(map[string]string, len(p.SectionLabels))
		}
		for k, v := range p.SectionLabels {
			if v == "" {
				delete(out.SectionLabels, k)
				continue
			}
			out.SectionLabels[k] = v
		}
	}
	return out
}

// PersonalInfoPatch sets fields of the personal info block.
type PersonalInfoPatch struct {
	FullName *string `json:"fullName,omitempty"`
	Title    *string `json:"title,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Location *string `json:"location,omitempty"`
	Website  *string `json:"website,omitempty"`
	LinkedIn *string `json:"linkedin,omitempty"`
	Photo    *string `json:"photo,omitempty"`
	Summary  *string `json:"summary,omitempty"`
}

// ApplyPersonalInfoPatch returns doc with the personal info patch applied.
func ApplyPersonalInfoPatch(doc Document, p PersonalInfoPatch) Document {
	out := doc.Clone()
	pi := &out.PersonalInfo
	setString(&pi.FullName, p.FullName)
	setString(&pi.Title, p.Title)
	setString(&pi.Email, p.Email)
	setString(&pi.Phone, p.Phone)
	setString(&pi.Location, p.Location)
	setString(&pi.Website, p.Website)
	setString(&pi.LinkedIn, p.LinkedIn)
	setString(&pi.Photo, p.Photo)
	setString(&pi.Summary, p.Summary)
	return out
}

// AddItem appends a blank item to the collection and returns its new id.
func AddItem(doc Document, c Collection) (Document, string, error) {
	out := doc.Clone()
	id := uuid.NewString()
	switch c {
	case CollectionExperience:
		out.Experience = append(out.Experience, Experience{ID: id})
	case CollectionEducation:
		out.Education = append(out.Education, Education{ID: id})
	case CollectionSkills:
		out.Skills = append(out.Skills, Skill{ID: id, Level: SkillIntermediate})
	case CollectionLanguages:
		out.Languages = append(out.Languages, Language{ID: id, Level: LanguageModerate})
	case CollectionProjects:
		out.Projects = append(out.Projects, Project{ID: id})
	default:
		return doc, "", fmt.Errorf("%w: unknown collection %q", ErrInvalidInput, c)
	}
	return out, id, nil
}

// RemoveItem deletes the item with id from the collection. Absent ids are a no-op.
func RemoveItem(doc Document, c Collection, id string) Document {
	out := doc.Clone()
	switch c {
	case CollectionExperience:
		out.Experience = removeByID(out.Experience, id, func(e Experience) string { return e.ID })
	case CollectionEducation:
		out.Education = removeByID(out.Education, id, func(e Education) string { return e.ID })
	case CollectionSkills:
		out.Skills = removeByID(out.Skills, id, func(s Skill) string { return s.ID })
	case CollectionLanguages:
		out.Languages = removeByID(out.Languages, id, func(l Language) string { return l.ID })
	case CollectionProjects:
		out.Projects = removeByID(out.Projects, id, func(p Project) string { return p.ID })
	}
	return out
}

// ItemPatch is a partial update for one item of a specific collection.
// Implementations: ExperiencePatch, EducationPatch, SkillPatch, LanguagePatch, ProjectPatch.
type ItemPatch interface {
	Collection() Collection
	apply(doc *Document, id string)
}

// UpdateItem applies patch to the item with id. Unknown ids are a no-op.
func UpdateItem(doc Document, id string, patch ItemPatch) Document {
	out := doc.Clone()
	if patch != nil {
		patch.apply(&out, id)
	}
	return out
}

type ExperiencePatch struct {
	Company     *string `json:"company,omitempty"`
	Role        *string `json:"role,omitempty"`
	StartDate   *string `json:"startDate,omitempty"`
	EndDate     *string `json:"endDate,omitempty"`
	Current     *bool   `json:"current,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (ExperiencePatch) Collection() Collection { return CollectionExperience }

func (p ExperiencePatch) apply(doc *Document, id string) {
	for i := range doc.Experience {
		if doc.Experience[i].ID != id {
			continue
		}
		e := &doc.Experience[i]
		setString(&e.Company, p.Company)
		setString(&e.Role, p.Role)
		setString(&e.StartDate, p.StartDate)
		setString(&e.EndDate, p.EndDate)
		if p.Current != nil {
			e.Current = *p.Current
		}
		setString(&e.Description, p.Description)
		return
	}
}

type EducationPatch struct {
	Institution *string `json:"institution,omitempty"`
	Degree      *string `json:"degree,omitempty"`
	Field       *string `json:"field,omitempty"`
	Year        *string `json:"year,omitempty"`
}

func (EducationPatch) Collection() Collection { return CollectionEducation }

func (p EducationPatch) apply(doc *Document, id string) {
	for i := range doc.Education {
		if doc.Education[i].ID != id {
			continue
		}
		e := &doc.Education[i]
		setString(&e.Institution, p.Institution)
		setString(&e.Degree, p.Degree)
		setString(&e.Field, p.Field)
		setString(&e.Year, p.Year)
		return
	}
}

type SkillPatch struct {
	Name  *string     `json:"name,omitempty"`
	Level *SkillLevel `json:"level,omitempty"`
}

func (SkillPatch) Collection() Collection { return CollectionSkills }

func (p SkillPatch) apply(doc *Document, id string) {
	for i := range doc.Skills {
		if doc.Skills[i].ID != id {
			continue
		}
		setString(&doc.Skills[i].Name, p.Name)
		if p.Level != nil {
			doc.Skills[i].Level = *p.Level
		}
		return
	}
}

type LanguagePatch struct {
	Name  *string        `json:"name,omitempty"`
	Level *LanguageLevel `json:"level,omitempty"`
}

func (LanguagePatch) Collection() Collection { return CollectionLanguages }

func (p LanguagePatch) apply(doc *Document, id string) {
	for i := range doc.Languages {
		if doc.Languages[i].ID != id {
			continue
		}
		setString(&doc.Languages[i].Name, p.Name)
		if p.Level != nil {
			doc.Languages[i].Level = *p.Level
		}
		return
	}
}

type ProjectPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Link        *string `json:"link,omitempty"`
}

func (ProjectPatch) Collection() Collection { return CollectionProjects }

func (p ProjectPatch) apply(doc *Document, id string) {
	for i := range doc.Projects {
		if doc.Projects[i].ID != id {
			continue
		}
		pr := &doc.Projects[i]
		setString(&pr.Name, p.Name)
		setString(&pr.Description, p.Description)
		setString(&pr.Link, p.Link)
		return
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func removeByID[T any](items []T, id string, idOf func(T) string) []T {
	if items == nil {
		return nil
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if idOf(it) == id {
			continue
		}
		out = append(out, it)
	}
	return out
}
