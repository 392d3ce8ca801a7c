package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidEmail(t *testing.T) {
	valid := []string{
		"user@example.com",
		"first.last@sub.domain.org",
		"u+tag@host.io",
	}
	for _, email := range valid {
		assert.True(t, ValidEmail(email), email)
	}

	invalid := []string{
		"",
		"plainaddress",
		"@missing-local.com",
		"missing-at.example.com",
		"no-domain@",
		"spaces in@example.com",
		"user@nodot",
	}
	for _, email := range invalid {
		assert.False(t, ValidEmail(email), email)
	}
}

func TestValidateProfileUpdatesWhitelist(t *testing.T) {
	msg := ValidateProfileUpdates(map[string]interface{}{
		"role": "admin",
	}, authProfileFields)
	assert.Equal(t, "Invalid updates", msg)

	// Gender is writable through the wide whitelist but not the auth one.
	msg = ValidateProfileUpdates(map[string]interface{}{
		"gender": "female",
	}, authProfileFields)
	assert.Equal(t, "Invalid updates", msg)

	msg = ValidateProfileUpdates(map[string]interface{}{
		"gender": "female",
	}, userProfileFields)
	assert.Empty(t, msg)
}

func TestValidateProfileUpdatesName(t *testing.T) {
	msg := ValidateProfileUpdates(map[string]interface{}{"name": ""}, userProfileFields)
	assert.Equal(t, "Name is required", msg)

	msg = ValidateProfileUpdates(map[string]interface{}{"name": "Ada"}, userProfileFields)
	assert.Empty(t, msg)
}

func TestValidateProfileUpdatesAge(t *testing.T) {
	cases := []struct {
		age  interface{}
		want string
	}{
		{float64(17), "Age must be between 18 and 120"},
		{float64(121), "Age must be between 18 and 120"},
		{"twenty", "Age must be between 18 and 120"},
		{float64(18), ""},
		{float64(120), ""},
	}
	for _, tc := range cases {
		msg := ValidateProfileUpdates(map[string]interface{}{"age": tc.age}, userProfileFields)
		assert.Equal(t, tc.want, msg, "age=%v", tc.age)
	}
}

func TestValidateProfileUpdatesGender(t *testing.T) {
	msg := ValidateProfileUpdates(map[string]interface{}{"gender": "robot"}, userProfileFields)
	assert.Equal(t, "Invalid gender value", msg)

	for _, g := range []string{"male", "female", "other"} {
		msg := ValidateProfileUpdates(map[string]interface{}{"gender": g}, userProfileFields)
		assert.Empty(t, msg, g)
	}
}

func TestValidateProfileUpdatesRelationshipGoals(t *testing.T) {
	msg := ValidateProfileUpdates(map[string]interface{}{"relationshipGoals": "pen pals"}, userProfileFields)
	assert.Equal(t, "Invalid relationship goals value", msg)

	for _, g := range []string{"casual", "serious", "marriage", "friendship"} {
		msg := ValidateProfileUpdates(map[string]interface{}{"relationshipGoals": g}, userProfileFields)
		assert.Empty(t, msg, g)
	}
}

func TestValidatePartnerPreferences(t *testing.T) {
	prefs := func(p map[string]interface{}) map[string]interface{} {
		return map[string]interface{}{"partnerPreferences": p}
	}

	msg := ValidateProfileUpdates(prefs(map[string]interface{}{
		"ageRange": map[string]interface{}{"min": float64(16), "max": float64(30)},
	}), userProfileFields)
	assert.Equal(t, "Invalid age range in partner preferences", msg)

	msg = ValidateProfileUpdates(prefs(map[string]interface{}{
		"ageRange": map[string]interface{}{"min": float64(40), "max": float64(30)},
	}), userProfileFields)
	assert.Equal(t, "Invalid age range in partner preferences", msg)

	msg = ValidateProfileUpdates(prefs(map[string]interface{}{
		"gender": "unknown",
	}), userProfileFields)
	assert.Equal(t, "Invalid gender in partner preferences", msg)

	msg = ValidateProfileUpdates(prefs(map[string]interface{}{
		"maxDistance": float64(25000),
	}), userProfileFields)
	assert.Equal(t, "Max distance must be between 0 and 20000 km", msg)

	// Preferences must be an object.
	msg = ValidateProfileUpdates(map[string]interface{}{
		"partnerPreferences": "none",
	}, userProfileFields)
	assert.Equal(t, "Invalid partner preferences", msg)

	msg = ValidateProfileUpdates(prefs(map[string]interface{}{
		"ageRange":    map[string]interface{}{"min": float64(25), "max": float64(35)},
		"gender":      "any",
		"maxDistance": float64(50),
	}), userProfileFields)
	assert.Empty(t, msg)
}
