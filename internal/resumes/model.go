package resumes

// SentinelID marks an in-memory document that has never been persisted.
const SentinelID = "default"

// Document is the resume aggregate edited by users.
type Document struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	LastModified  int64             `json:"lastModified"`
	TemplateID    string            `json:"templateId"`
	ThemeColor    string            `json:"themeColor"`
	Font          string            `json:"font,omitempty"`
	SectionLabels map[string]string `json:"sectionLabels,omitempty"`
	ShareConfig   *ShareConfig      `json:"shareConfig,omitempty"`
	PersonalInfo  PersonalInfo      `json:"personalInfo"`
	Experience    []Experience      `json:"experience"`
	Education     []Education       `json:"education"`
	Skills        []Skill           `json:"skills"`
	Languages     []Language        `json:"languages"`
	Projects      []Project         `json:"projects"`
}

// ShareConfig gates public access to a document. ExpiresAt is epoch millis.
type ShareConfig struct {
	Enabled   bool  `json:"enabled"`
	ExpiresAt int64 `json:"expiresAt"`
}

// PersonalInfo is the singleton header block of a resume.
type PersonalInfo struct {
	FullName string `json:"fullName"`
	Title    string `json:"title"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	Website  string `json:"website,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	// Photo is an embedded data URL (base64).
	Photo   string `json:"photo,omitempty"`
	Summary string `json:"summary"`
}

// Experience represents a work history entry.
type Experience struct {
	ID          string `json:"id"`
	Company     string `json:"company"`
	Role        string `json:"role"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

// DisplayEnd returns the end date as rendered; Current overrides EndDate.
func (e Experience) DisplayEnd() string {
	if e.Current {
		return "Present"
	}
	return e.EndDate
}

// Education represents an education entry. Year is free text.
type Education struct {
	ID          string `json:"id"`
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	Year        string `json:"year"`
}

// SkillLevel is the proficiency scale for skills.
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "Beginner"
	SkillIntermediate SkillLevel = "Intermediate"
	SkillAdvanced     SkillLevel = "Advanced"
	SkillExpert       SkillLevel = "Expert"
)

// Valid reports whether l is a known skill level.
func (l SkillLevel) Valid() bool {
	switch l {
	case SkillBeginner, SkillIntermediate, SkillAdvanced, SkillExpert:
		return true
	}
	return false
}

// Skill is a named skill with a proficiency.
type Skill struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Level SkillLevel `json:"level"`
}

// LanguageLevel is the proficiency scale for spoken languages. It is not
// interchangeable with SkillLevel.
type LanguageLevel string

const (
	LanguageBeginner LanguageLevel = "Beginner"
	LanguageModerate LanguageLevel = "Moderate"
	LanguageAdvanced LanguageLevel = "Advanced"
	LanguageFluent   LanguageLevel = "Fluent"
)

// Valid reports whether l is a known language level.
func (l LanguageLevel) Valid() bool {
	switch l {
	case LanguageBeginner, LanguageModerate, LanguageAdvanced, LanguageFluent:
		return true
	}
	return false
}

// Language is a spoken language with a proficiency.
type Language struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Level LanguageLevel `json:"level"`
}

// Project represents a notable project.
type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Link        string `json:"link,omitempty"`
}

// Collection names a nested, ordered item list of a Document.
type Collection string

const (
	CollectionExperience Collection = "experience"
	CollectionEducation  Collection = "education"
	CollectionSkills     Collection = "skills"
	CollectionLanguages  Collection = "languages"
	CollectionProjects   Collection = "projects"
)

// IsSentinelID reports whether id must be replaced before persisting.
func IsSentinelID(id string) bool {
	return id == "" || id == SentinelID
}

// Clone returns a deep copy of d.
func (d Document) Clone() Document {
	out := d
	if d.SectionLabels != nil {
		out.SectionLabels = make(map[string]string, len(d.SectionLabels))
		for k, v := range d.SectionLabels {
			out.SectionLabels[k] = v
		}
	}
	if d.ShareConfig != nil {
		sc := *d.ShareConfig
		out.ShareConfig = &sc
	}
	out.Experience = cloneSlice(d.Experience)
	out.Education = cloneSlice(d.Education)
	out.Skills = cloneSlice(d.Skills)
	out.Languages = cloneSlice(d.Languages)
	out.Projects = cloneSlice(d.Projects)
	return out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
