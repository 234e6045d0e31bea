package services

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"volunteerhub/model"
)

//go:embed forms.yaml
var defaultForms []byte

// FormCatalog holds the forms embedded into feedback and verification notifications.
type FormCatalog struct {
	Volunteer    model.Form `yaml:"volunteer"`
	Member       model.Form `yaml:"member"`
	Verification struct {
		// Question is a format string receiving the participant email.
		Question string `yaml:"question"`
	} `yaml:"verification"`
}

// LoadForms reads the catalog from path, or the built-in catalog when path is empty.
func LoadForms(path string) (*FormCatalog, error) {
	data := defaultForms
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read forms file: %w", err)
		}
		data = b
	}
	return ParseForms(data)
}

func ParseForms(data []byte) (*FormCatalog, error) {
	var c FormCatalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse forms: %w", err)
	}
	if err := c.Volunteer.Validate(); err != nil {
		return nil, fmt.Errorf("volunteer form: %w", err)
	}
	if err := c.Member.Validate(); err != nil {
		return nil, fmt.Errorf("member form: %w", err)
	}
	if !strings.Contains(c.Verification.Question, "%s") {
		return nil, fmt.Errorf("verification question must contain %%s for the participant")
	}
	return &c, nil
}

// VerificationForm asks one yes/no question per participant; question ids are the
// participant emails.
func (c *FormCatalog) VerificationForm(participants []string) model.Form {
	form := make(model.Form, 0, len(participants))
	for _, p := range participants {
		form = append(form, model.Question{
			ID:       p,
			Type:     model.QuestionBoolean,
			Question: fmt.Sprintf(c.Verification.Question, p),
		})
	}
	return form
}
