package resumes

import (
	"errors"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestApplyDocumentPatchLeavesInputUntouched(t *testing.T) {
	doc := NewDefault(time.Now())
	doc.SectionLabels = map[string]string{"experience": "Work"}

	out := ApplyDocumentPatch(doc, DocumentPatch{
		Title:         strPtr("Backend CV"),
		SectionLabels: map[string]string{"experience": "", "skills": "Tools"},
	})

	if out.Title != "Backend CV" {
		t.Fatalf("expected patched title, got %q", out.Title)
	}
	if _, ok := out.SectionLabels["experience"]; ok {
		t.Fatalf("expected empty label to remove override")
	}
	if out.SectionLabels["skills"] != "Tools" {
		t.Fatalf("expected skills label set")
	}
	if doc.Title != "My Resume" {
		t.Fatalf("input title mutated: %q", doc.Title)
	}
	if doc.SectionLabels["experience"] != "Work" {
		t.Fatalf("input section labels mutated")
	}
	if out.TemplateID != doc.TemplateID {
		t.Fatalf("unset fields must be preserved")
	}
}

func TestApplyPersonalInfoPatch(t *testing.T) {
	doc := NewDefault(time.Now())
	out := ApplyPersonalInfoPatch(doc, PersonalInfoPatch{FullName: strPtr("Ada Lovelace")})
	if out.PersonalInfo.FullName != "Ada Lovelace" {
		t.Fatalf("unexpected name %q", out.PersonalInfo.FullName)
	}
	if out.PersonalInfo.Email != doc.PersonalInfo.Email {
		t.Fatalf("expected email preserved")
	}
	if doc.PersonalInfo.FullName != "Your Name" {
		t.Fatalf("input mutated")
	}
}

func TestAddItemDefaults(t *testing.T) {
	doc := Document{}

	out, skillID, err := AddItem(doc, CollectionSkills)
	if err != nil {
		t.Fatalf("AddItem skills: %v", err)
	}
	if len(out.Skills) != 1 || out.Skills[0].ID != skillID {
		t.Fatalf("expected new skill with returned id")
	}
	if out.Skills[0].Level != SkillIntermediate {
		t.Fatalf("expected Intermediate default, got %q", out.Skills[0].Level)
	}

	out, _, err = AddItem(out, CollectionLanguages)
	if err != nil {
		t.Fatalf("AddItem languages: %v", err)
	}
	if out.Languages[0].Level != LanguageModerate {
		t.Fatalf("expected Moderate default, got %q", out.Languages[0].Level)
	}
	if len(doc.Skills) != 0 {
		t.Fatalf("input mutated")
	}

	for _, c := range []Collection{CollectionExperience, CollectionEducation, CollectionProjects} {
		next, id, err := AddItem(Document{}, c)
		if err != nil {
			t.Fatalf("AddItem %s: %v", c, err)
		}
		if id == "" {
			t.Fatalf("AddItem %s: expected id", c)
		}
		if next.Experience == nil && next.Education == nil && next.Projects == nil {
			t.Fatalf("AddItem %s: nothing appended", c)
		}
	}
}

func TestAddItemUnknownCollection(t *testing.T) {
	_, _, err := AddItem(Document{}, Collection("hobbies"))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRemoveItemPreservesOrder(t *testing.T) {
	doc := Document{Projects: []Project{{ID: "a"}, {ID: "b"}, {ID: "c"}}}
	out := RemoveItem(doc, CollectionProjects, "b")
	if len(out.Projects) != 2 || out.Projects[0].ID != "a" || out.Projects[1].ID != "c" {
		t.Fatalf("unexpected projects: %+v", out.Projects)
	}
	if len(doc.Projects) != 3 {
		t.Fatalf("input mutated")
	}
	same := RemoveItem(doc, CollectionProjects, "missing")
	if len(same.Projects) != 3 {
		t.Fatalf("expected missing id to be a no-op")
	}
}

func TestUpdateItem(t *testing.T) {
	doc := Document{
		Experience: []Experience{{ID: "e1", Company: "Acme", EndDate: "2020"}},
		Skills:     []Skill{{ID: "s1", Name: "Go", Level: SkillIntermediate}},
	}
	current := true
	out := UpdateItem(doc, "e1", ExperiencePatch{Role: strPtr("Engineer"), Current: &current})
	if out.Experience[0].Role != "Engineer" || out.Experience[0].Company != "Acme" {
		t.Fatalf("unexpected experience: %+v", out.Experience[0])
	}
	if out.Experience[0].DisplayEnd() != "Present" {
		t.Fatalf("current flag should override end date")
	}
	if doc.Experience[0].Role != "" {
		t.Fatalf("input mutated")
	}

	level := SkillExpert
	out = UpdateItem(out, "s1", SkillPatch{Level: &level})
	if out.Skills[0].Level != SkillExpert || out.Skills[0].Name != "Go" {
		t.Fatalf("unexpected skill: %+v", out.Skills[0])
	}

	unchanged := UpdateItem(doc, "nope", ProjectPatch{Name: strPtr("x")})
	if len(unchanged.Projects) != 0 {
		t.Fatalf("unknown id must not add items")
	}
}

func TestCloneIsDeep(t *testing.T) {
	doc := NewDefault(time.Now())
	doc.ShareConfig = &ShareConfig{Enabled: true, ExpiresAt: 10}
	cp := doc.Clone()
	cp.Skills[0].Name = "changed"
	cp.ShareConfig.ExpiresAt = 20
	if doc.Skills[0].Name == "changed" {
		t.Fatalf("skills shared between clones")
	}
	if doc.ShareConfig.ExpiresAt != 10 {
		t.Fatalf("share config shared between clones")
	}
}
