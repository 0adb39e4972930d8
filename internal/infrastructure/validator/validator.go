package validator

import (
	"fmt"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/mikiasgoitom/PromptShelf/internal/domain/entity"
	usecasecontract "github.com/mikiasgoitom/PromptShelf/internal/usecase/contract"
)

// AppValidator implements the usecasecontract.IValidator interface.
type AppValidator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator that implements the usecasecontract.IValidator interface.
func NewValidator() usecasecontract.IValidator {
	v := validator.New()
	_ = v.RegisterValidation("username", usernameFL)
	return &AppValidator{validate: v}
}

// ValidateUsername checks length and character set.
func (av *AppValidator) ValidateUsername(username string) error {
	if err := av.validate.Var(username, "required,min=2,max=64,username"); err != nil {
		return fmt.Errorf("username %q is not valid", username)
	}
	return nil
}

// ValidateURL checks that raw is an absolute http(s) URL.
func (av *AppValidator) ValidateURL(raw string) error {
	if err := av.validate.Var(raw, "required,http_url"); err != nil {
		return fmt.Errorf("url %q is not valid", raw)
	}
	return nil
}

// RegisterCustomValidators registers custom validation functions with the Gin validator.
func RegisterCustomValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("reactionkind", reactionKindFL)
		_ = v.RegisterValidation("username", usernameFL)
	}
}

func reactionKindFL(fl validator.FieldLevel) bool {
	return entity.ReactionKind(fl.Field().String()).Valid()
}

// Letters, digits and . _ - | only. Provider subjects such as "auth0|abc" are valid fallbacks.
func isUsername(s string) bool {
	for _, char := range s {
		if unicode.IsLetter(char) || unicode.IsDigit(char) {
			continue
		}
		switch char {
		case '.', '_', '-', '|':
			continue
		}
		return false
	}
	return true
}

func usernameFL(fl validator.FieldLevel) bool {
	return isUsername(fl.Field().String())
}
