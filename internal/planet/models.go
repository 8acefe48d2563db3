package planet

import (
	"time"
)

type Planet struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	Description   *string   `json:"description"`
	Diameter      int       `json:"diameter"`
	PhotoFilename *string   `json:"photoFilename"`
	CreatedBy     string    `json:"createdBy"`
	UpdatedBy     string    `json:"updatedBy"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Data is the validated, normalized payload of a create or update request.
// Identity and timestamps are never part of it; the repository owns those.
type Data struct {
	Name        string
	Description *string
	Diameter    int
}

// DataFromNormalized builds a Data from a schema-validated body.
func DataFromNormalized(body map[string]any) Data {
	data := Data{}

	if name, ok := body["name"].(string); ok {
		data.Name = name
	}
	if description, ok := body["description"].(string); ok {
		data.Description = &description
	}
	if diameter, ok := body["diameter"].(int); ok {
		data.Diameter = diameter
	}

	return data
}
