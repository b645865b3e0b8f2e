package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Email string `validate:"required,email"`
	Page  int    `validate:"gte=1"`
}

func TestStruct(t *testing.T) {
	assert.NoError(t, Struct(sample{Email: "a@b.co", Page: 1}))

	err := Struct(sample{Email: "nope", Page: 0})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "field 'Email' failed 'email'")
	assert.Contains(t, err.Error(), "field 'Page' failed 'gte'")
}

func TestEmail(t *testing.T) {
	assert.NoError(t, Email("user@example.com"))
	assert.Error(t, Email(""))
	assert.Error(t, Email("user@"))
}

type jsonNamed struct {
	SharedCode string `json:"shared_code,omitempty" validate:"required"`
}

func TestStruct_ReportsJSONNames(t *testing.T) {
	err := Struct(jsonNamed{})
	assert.EqualError(t, err, "field 'shared_code' failed 'required'")
}
