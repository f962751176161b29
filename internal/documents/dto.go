package documents

import (
	"encoding/json"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"resume-builder/internal/resumes"
)

type createRequest struct {
	Title string `json:"title"`
}

func (r createRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Length(0, 200)),
	)
}

// Mutation ops accepted by PATCH /resumes/:id.
const (
	OpSet         = "set"
	OpSetPersonal = "setPersonal"
	OpAdd         = "add"
	OpUpdate      = "update"
	OpRemove      = "remove"
)

// mutationRequest is one document edit. Fields is decoded according to Op
// and, for item ops, Collection.
type mutationRequest struct {
	Op         string          `json:"op"`
	Collection string          `json:"collection,omitempty"`
	ItemID     string          `json:"itemId,omitempty"`
	Fields     json.RawMessage `json:"fields,omitempty"`
}

func (r mutationRequest) Validate() error {
	itemOp := r.Op == OpAdd || r.Op == OpUpdate || r.Op == OpRemove
	return validation.ValidateStruct(&r,
		validation.Field(&r.Op, validation.Required,
			validation.In(OpSet, OpSetPersonal, OpAdd, OpUpdate, OpRemove)),
		validation.Field(&r.Collection, validation.When(itemOp, validation.Required,
			validation.In(
				string(resumes.CollectionExperience),
				string(resumes.CollectionEducation),
				string(resumes.CollectionSkills),
				string(resumes.CollectionLanguages),
				string(resumes.CollectionProjects),
			))),
		validation.Field(&r.ItemID, validation.When(r.Op == OpUpdate || r.Op == OpRemove, validation.Required)),
		validation.Field(&r.Fields, validation.When(r.Op == OpSet || r.Op == OpSetPersonal || r.Op == OpUpdate, validation.Required)),
	)
}

// mutation turns the request into a pure document transformation. The id of
// an added item is reported through addedID.
func (r mutationRequest) mutation(addedID *string) (MutateFunc, error) {
	switch r.Op {
	case OpSet:
		var p resumes.DocumentPatch
		if err := json.Unmarshal(r.Fields, &p); err != nil {
			return nil, fmt.Errorf("%w: fields: %v", resumes.ErrInvalidInput, err)
		}
		return func(doc resumes.Document) (resumes.Document, error) {
			return resumes.ApplyDocumentPatch(doc, p), nil
		}, nil
	case OpSetPersonal:
		var p resumes.PersonalInfoPatch
		if err := json.Unmarshal(r.Fields, &p); err != nil {
			return nil, fmt.Errorf("%w: fields: %v", resumes.ErrInvalidInput, err)
		}
		return func(doc resumes.Document) (resumes.Document, error) {
			return resumes.ApplyPersonalInfoPatch(doc, p), nil
		}, nil
	case OpAdd:
		c := resumes.Collection(r.Collection)
		return func(doc resumes.Document) (resumes.Document, error) {
			out, id, err := resumes.AddItem(doc, c)
			if err != nil {
				return resumes.Document{}, err
			}
			if addedID != nil {
				*addedID = id
			}
			return out, nil
		}, nil
	case OpUpdate:
		patch, err := decodeItemPatch(resumes.Collection(r.Collection), r.Fields)
		if err != nil {
			return nil, err
		}
		id := r.ItemID
		return func(doc resumes.Document) (resumes.Document, error) {
			return resumes.UpdateItem(doc, id, patch), nil
		}, nil
	case OpRemove:
		c, id := resumes.Collection(r.Collection), r.ItemID
		return func(doc resumes.Document) (resumes.Document, error) {
			return resumes.RemoveItem(doc, c, id), nil
		}, nil
	}
	return nil, fmt.Errorf("%w: unknown op %q", resumes.ErrInvalidInput, r.Op)
}

func decodeItemPatch(c resumes.Collection, raw json.RawMessage) (resumes.ItemPatch, error) {
	var (
		patch resumes.ItemPatch
		err   error
	)
	switch c {
	case resumes.CollectionExperience:
		var p resumes.ExperiencePatch
		err = json.Unmarshal(raw, &p)
		patch = p
	case resumes.CollectionEducation:
		var p resumes.EducationPatch
		err = json.Unmarshal(raw, &p)
		patch = p
	case resumes.CollectionSkills:
		var p resumes.SkillPatch
		err = json.Unmarshal(raw, &p)
		if err == nil && p.Level != nil && !p.Level.Valid() {
			err = fmt.Errorf("invalid skill level %q", *p.Level)
		}
		patch = p
	case resumes.CollectionLanguages:
		var p resumes.LanguagePatch
		err = json.Unmarshal(raw, &p)
		if err == nil && p.Level != nil && !p.Level.Valid() {
			err = fmt.Errorf("invalid language level %q", *p.Level)
		}
		patch = p
	case resumes.CollectionProjects:
		var p resumes.ProjectPatch
		err = json.Unmarshal(raw, &p)
		patch = p
	default:
		return nil, fmt.Errorf("%w: unknown collection %q", resumes.ErrInvalidInput, c)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: fields: %v", resumes.ErrInvalidInput, err)
	}
	return patch, nil
}

type listResponse struct {
	Resumes []resumes.Document `json:"resumes"`
}

type mutationResponse struct {
	Resume  resumes.Document `json:"resume"`
	AddedID string           `json:"addedId,omitempty"`
}
