package response

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	registerOnce sync.Once
	translator   ut.Translator
)

const requiredText = "this field is required"

// RegisterValidator configures gin's validator: field errors use JSON names and
// English messages.
func RegisterValidator() {
	registerOnce.Do(func() {
		english := en.New()
		translator, _ = ut.New(english, english).GetTranslator("en")

		validate, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = en_translations.RegisterDefaultTranslations(validate, translator)
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if tag == "" {
				tag = fld.Tag.Get("form")
			}
			name := strings.SplitN(tag, ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = validate.RegisterTranslation("required", translator,
			func(t ut.Translator) error { return t.Add("required", requiredText, true) },
			func(t ut.Translator, fe validator.FieldError) string {
				s, _ := t.T("required", fe.Field())
				return s
			},
		)
	})
}

func translate(fe validator.FieldError) string {
	if translator == nil {
		return fe.Error()
	}
	return fe.Translate(translator)
}
