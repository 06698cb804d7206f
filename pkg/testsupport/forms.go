package testsupport

import "github.com/goliatone/go-formfill/pkg/schema"

// PartyInitiator is the acting party used across fixtures.
const PartyInitiator = "initiator"

// AgreementForm builds a small internship-agreement schema exercising every
// block kind: headers, an interpolated paragraph, positioned fields, a
// phantom field, a computed field, another party's field, and one
// initiator-supplied signing party requiring an email.
func AgreementForm() schema.FormSchema {
	return schema.FormSchema{
		Name:    "internship-agreement",
		Version: "3",
		Blocks: []schema.Block{
			{Kind: schema.BlockHeader, Order: 0, Text: "Internship Agreement"},
			{Kind: schema.BlockParagraph, Order: 1, Text: "I, {{ student_name }}, agree to the terms below."},
			{Kind: schema.BlockField, Order: 2, SigningPartyID: PartyInitiator, Field: &schema.FieldDefinition{
				Field:          "student_name",
				Label:          "Student name",
				Type:           schema.FieldTypeText,
				Section:        "applicant",
				SigningPartyID: PartyInitiator,
				Source:         schema.SourceManual,
				Validations:    []schema.ValidationRule{{Kind: schema.ValidationRuleRequired}},
				Position:       &schema.Position{Page: 1, X: 72, Y: 120, Width: 180, Height: 14},
			}},
			{Kind: schema.BlockField, Order: 3, SigningPartyID: PartyInitiator, Field: &schema.FieldDefinition{
				Field:          "weekly_hours",
				Label:          "Weekly hours",
				Type:           schema.FieldTypeNumber,
				Section:        "applicant",
				SigningPartyID: PartyInitiator,
				Source:         schema.SourceManual,
				Validations: []schema.ValidationRule{
					{Kind: schema.ValidationRuleMax, Params: map[string]string{"value": "40"}},
				},
				Position: &schema.Position{Page: 1, X: 72, Y: 150, Width: 60, Height: 14},
			}},
			{Kind: schema.BlockField, Order: 4, SigningPartyID: PartyInitiator, Field: &schema.FieldDefinition{
				Field:          "start_date",
				Label:          "Start date",
				Type:           schema.FieldTypeDate,
				Section:        "applicant",
				SigningPartyID: PartyInitiator,
				Source:         schema.SourceManual,
				Position:       &schema.Position{Page: 1, X: 72, Y: 180, Width: 90, Height: 14},
			}},
			{Kind: schema.BlockPhantomField, Order: 5, SigningPartyID: PartyInitiator, Field: &schema.FieldDefinition{
				Field:          "student_email",
				Label:          "Student email",
				Type:           schema.FieldTypeText,
				Section:        "applicant",
				SigningPartyID: PartyInitiator,
				Source:         schema.SourceManual,
				Validations:    []schema.ValidationRule{{Kind: schema.ValidationRuleEmail}},
			}},
			{Kind: schema.BlockField, Order: 6, SigningPartyID: PartyInitiator, Field: &schema.FieldDefinition{
				Field:          "agreement_number",
				Label:          "Agreement number",
				Type:           schema.FieldTypeText,
				Section:        "issuing-institution",
				SigningPartyID: PartyInitiator,
				Source:         schema.SourceComputed,
				Position:       &schema.Position{Page: 1, X: 420, Y: 60, Width: 90, Height: 12},
			}},
			{Kind: schema.BlockField, Order: 7, SigningPartyID: "company", Field: &schema.FieldDefinition{
				Field:          "supervisor_signature",
				Label:          "Supervisor signature",
				Type:           schema.FieldTypeSignature,
				Section:        "counterpart-entity",
				SigningPartyID: "company",
				Source:         schema.SourceManual,
				Position:       &schema.Position{Page: 2, X: 72, Y: 600, Width: 160, Height: 40},
			}},
		},
		SigningParties: []schema.SigningParty{
			{
				ID:   "company",
				Role: schema.RoleInitiatorSupplied,
				RequiredContactFields: []schema.FieldDefinition{
					{
						Field:       "company_email",
						Label:       "Company email",
						Type:        schema.FieldTypeText,
						Validations: []schema.ValidationRule{{Kind: schema.ValidationRuleEmail}},
					},
				},
			},
		},
	}
}
