package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to French labels shown to API clients
var FieldLabels = map[string]string{
	// Auth
	"Email":    "E-mail",
	"Password": "Mot de passe",
	"Role":     "Rôle",

	// Profiles
	"Nom":         "Nom",
	"Secteur":     "Secteur",
	"Description": "Description",
	"SiteWeb":     "Site web",
	"Competence":  "Compétences",
	"Experience":  "Expérience",
	"Formation":   "Formation",
	"Certificat":  "Certificats",
	"Tarif":       "Tarif",

	// Missions
	"Titre":            "Titre",
	"CompetenceRequis": "Compétences requises",
	"Budget":           "Budget",

	// Candidatures
	"Status":           "Statut",
	"DateEntretien":    "Date d'entretien",
	"Timezone":         "Fuseau horaire",
	"LettreMotivation": "Lettre de motivation",
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return messages
}

func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())
	param := e.Param()
	isString := e.Kind().String() == "string"

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s : ce champ est obligatoire", label)
	case "min":
		if isString {
			return fmt.Sprintf("%s : %s caractères minimum", label, param)
		}
		return fmt.Sprintf("%s : minimum %s", label, param)
	case "max":
		if isString {
			return fmt.Sprintf("%s : %s caractères maximum", label, param)
		}
		return fmt.Sprintf("%s : maximum %s", label, param)
	case "gte":
		return fmt.Sprintf("%s : doit être supérieur ou égal à %s", label, param)
	case "oneof":
		return fmt.Sprintf("%s : doit être l'une des valeurs : %s", label, strings.ReplaceAll(param, " ", ", "))
	case "email":
		return fmt.Sprintf("%s : adresse e-mail invalide", label)
	case "url":
		return fmt.Sprintf("%s : URL invalide", label)
	case "timezone":
		return fmt.Sprintf("%s : fuseau horaire inconnu", label)
	case "valid_name":
		return fmt.Sprintf("%s : seuls les lettres, chiffres, espaces et la ponctuation courante sont autorisés", label)
	case "no_emoji":
		return fmt.Sprintf("%s : les emojis et symboles ne sont pas autorisés", label)
	case "user_role":
		return fmt.Sprintf("%s : doit être Freelance ou Entreprise", label)
	case "candidature_status":
		return fmt.Sprintf("%s : statut inconnu", label)
	default:
		return fmt.Sprintf("%s : valeur invalide (%s)", label, e.Tag())
	}
}

func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return fieldName
}
