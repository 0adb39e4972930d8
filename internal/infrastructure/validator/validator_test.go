package validator

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidateUsername("ada.lovelace"))
	assert.NoError(t, v.ValidateUsername("auth0|65f1c2"))
	assert.Error(t, v.ValidateUsername(""))
	assert.Error(t, v.ValidateUsername("a"))
	assert.Error(t, v.ValidateUsername("has space"))
	assert.Error(t, v.ValidateUsername("<script>"))
}

func TestValidateURL(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidateURL("https://cdn.example.com/a.png"))
	assert.Error(t, v.ValidateURL("javascript:alert(1)"))
	assert.Error(t, v.ValidateURL("not a url"))
}

type kindRequest struct {
	Kind string `binding:"required,reactionkind"`
}

func TestRegisterCustomValidators(t *testing.T) {
	RegisterCustomValidators()

	assert.NoError(t, binding.Validator.ValidateStruct(&kindRequest{Kind: "bookmark"}))
	assert.Error(t, binding.Validator.ValidateStruct(&kindRequest{Kind: "clap"}))
}
