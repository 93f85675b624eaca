package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profileInput struct {
	Nom     string `validate:"required,min=2,valid_name"`
	Secteur string `validate:"no_emoji"`
	Role    string `validate:"required,user_role"`
	Status  string `validate:"candidature_status"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	RegisterValidators(v)
	return v
}

func TestCustomValidators(t *testing.T) {
	v := newValidator()

	tests := []struct {
		name    string
		input   profileInput
		wantErr bool
	}{
		{"Valid entreprise", profileInput{Nom: "Dupont & Fils", Secteur: "BTP", Role: "Entreprise"}, false},
		{"Accented name", profileInput{Nom: "Hélène L'Écuyer", Role: "Freelance", Status: "en_entretien"}, false},
		{"Name with symbols", profileInput{Nom: "Acme <script>", Role: "Entreprise"}, true},
		{"Emoji sector", profileInput{Nom: "Acme", Secteur: "Tech 🚀", Role: "Entreprise"}, true},
		{"Unknown role", profileInput{Nom: "Acme", Role: "admin"}, true},
		{"Unknown status", profileInput{Nom: "Acme", Role: "Freelance", Status: "archived"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFormatValidationErrors(t *testing.T) {
	err := newValidator().Struct(profileInput{Nom: "A", Role: "root"})
	require.Error(t, err)

	msgs := FormatValidationErrors(err)
	assert.Contains(t, msgs, "Nom : 2 caractères minimum")
	assert.Contains(t, msgs, "Rôle : doit être Freelance ou Entreprise")
}
