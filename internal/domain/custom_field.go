package domain

import (
	"context"
	"fmt"
	"time"
)

// CustomFieldType is the value type a custom field stores.
type CustomFieldType string

const (
	CustomFieldTypeString  CustomFieldType = "String"
	CustomFieldTypeInt     CustomFieldType = "Int"
	CustomFieldTypeBoolean CustomFieldType = "Boolean"
	CustomFieldTypeJSON    CustomFieldType = "JSON"
)

func (t CustomFieldType) Validate() error {
	switch t {
	case CustomFieldTypeString, CustomFieldTypeInt, CustomFieldTypeBoolean, CustomFieldTypeJSON:
		return nil
	}
	return fmt.Errorf("invalid custom field type: %s", t)
}

// CustomFieldRelation describes what kind of record a custom field augments.
type CustomFieldRelation string

const (
	CustomFieldRelationUser CustomFieldRelation = "User"
	CustomFieldRelationCMS  CustomFieldRelation = "CMS"
)

func (r CustomFieldRelation) Validate() error {
	switch r {
	case CustomFieldRelationUser, CustomFieldRelationCMS:
		return nil
	}
	return fmt.Errorf("invalid custom field relation: %s", r)
}

// CustomField is a lookup entity referenced by the polymorphic project
// configuration join.
type CustomField struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Type      CustomFieldType     `json:"type"`
	Relation  CustomFieldRelation `json:"relation"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

func (f *CustomField) Validate() error {
	if f.Name == "" {
		return NewValidationError("name is required")
	}
	if err := f.Type.Validate(); err != nil {
		return NewValidationError(err.Error())
	}
	if err := f.Relation.Validate(); err != nil {
		return NewValidationError(err.Error())
	}
	return nil
}

type CustomFieldRepository interface {
	Create(ctx context.Context, field *CustomField) error
	GetByID(ctx context.Context, id string) (*CustomField, error)
	List(ctx context.Context) ([]*CustomField, error)
	Delete(ctx context.Context, id string) error
}
