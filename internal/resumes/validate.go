package resumes

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const maxPhotoBytes = 4 << 20

// Validate checks the document shape accepted at the API boundary.
func (d Document) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.ID, validation.Length(0, 64)),
		validation.Field(&d.Title, validation.Length(0, 200)),
		validation.Field(&d.TemplateID, validation.Length(0, 64)),
		validation.Field(&d.ThemeColor, validation.Length(0, 32)),
		validation.Field(&d.Font, validation.Length(0, 64)),
		validation.Field(&d.ShareConfig),
		validation.Field(&d.PersonalInfo),
		validation.Field(&d.Experience),
		validation.Field(&d.Education),
		validation.Field(&d.Skills),
		validation.Field(&d.Languages),
		validation.Field(&d.Projects),
	)
}

func (s ShareConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.ExpiresAt, validation.Min(int64(0))),
	)
}

func (p PersonalInfo) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.FullName, validation.Length(0, 200)),
		validation.Field(&p.Email, validation.Length(0, 320)),
		validation.Field(&p.Photo, validation.Length(0, maxPhotoBytes)),
	)
}

func (e Experience) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.ID, validation.Required),
	)
}

func (e Education) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.ID, validation.Required),
	)
}

func (s Skill) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.ID, validation.Required),
		validation.Field(&s.Name, validation.Length(0, 100)),
		validation.Field(&s.Level, validation.Required,
			validation.In(SkillBeginner, SkillIntermediate, SkillAdvanced, SkillExpert)),
	)
}

func (l Language) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.ID, validation.Required),
		validation.Field(&l.Name, validation.Length(0, 100)),
		validation.Field(&l.Level, validation.Required,
			validation.In(LanguageBeginner, LanguageModerate, LanguageAdvanced, LanguageFluent)),
	)
}

func (p Project) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.ID, validation.Required),
		validation.Field(&p.Link, validation.Length(0, 2048)),
	)
}
