// internal/models/form.go
package models

import (
	"errors"
	"fmt"
	"strconv"

	"chronocost/internal/historical"
)

var ErrUnknownField = errors.New("unknown form field")

// Attachment is a file chosen for upload.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Form is one user's editing session of the intake form.
type Form struct {
	Input   FormInput
	CSVFile *Attachment
}

// NewForm returns a form with the intake defaults.
func NewForm() *Form {
	return &Form{Input: FormInput{
		ProjectType: ProjectTypeConstruction,
		Terrain:     TerrainFlat,
	}}
}

// Set assigns a field by its form name. hasHistoricalData takes a
// checkbox value. Choosing Software forces terrain to na_software; moving
// away from Software while terrain is na_software resets it to flat.
func (f *Form) Set(name, value string) error {
	in := &f.Input
	switch name {
	case "companyName":
		in.CompanyName = value
	case "projectName":
		in.ProjectName = value
	case "projectType":
		prevTerrain := in.Terrain
		in.ProjectType = value
		if value == ProjectTypeSoftware {
			in.Terrain = TerrainNotApplicable
		} else if prevTerrain == TerrainNotApplicable {
			in.Terrain = TerrainFlat
		}
	case "location":
		in.Location = value
	case "terrain":
		in.Terrain = value
	case "estimatedBudget":
		in.EstimatedBudget = value
	case "estimatedDuration":
		in.EstimatedDuration = value
	case "scopeDescription":
		in.ScopeDescription = value
	case "riskFactors":
		in.RiskFactors = value
	case "hasHistoricalData":
		in.HasHistoricalData = ParseCheckbox(value)
	case "categories":
		in.Categories = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	return nil
}

// ParseCheckbox accepts the values browsers and clients send for a ticked
// box.
func ParseCheckbox(value string) bool {
	if value == "on" {
		return true
	}
	b, err := strconv.ParseBool(value)
	return err == nil && b
}

// AttachCSV selects a historical data file. A non-CSV file is rejected
// and the previous selection is kept; nil clears the selection.
func (f *Form) AttachCSV(file *Attachment) error {
	if file == nil {
		f.CSVFile = nil
		return nil
	}
	if err := historical.CheckContentType(file.ContentType); err != nil {
		return err
	}
	f.CSVFile = file
	return nil
}

// CanSubmit mirrors the submit button: a form that claims historical data
// needs a file attached.
func (f *Form) CanSubmit() bool {
	return !f.Input.HasHistoricalData || f.CSVFile != nil
}
