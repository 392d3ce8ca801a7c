package handlers

import "regexp"

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether the address matches the registration format check.
func ValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// Mutable-field whitelists. PATCH /auth/profile accepts a narrower set than
// PUT /users/profile.
var authProfileFields = []string{"name", "age", "country", "bio", "partnerPreferences", "interests"}
var userProfileFields = []string{
	"name", "bio", "age", "gender", "location", "interests", "photos",
	"videoProfile", "partnerPreferences", "relationshipGoals",
}

func fieldAllowed(field string, allowed []string) bool {
	for _, a := range allowed {
		if field == a {
			return true
		}
	}
	return false
}

func oneOf(value string, values ...string) bool {
	for _, v := range values {
		if value == v {
			return true
		}
	}
	return false
}

// asInt coerces a decoded JSON number. encoding/json gives float64 for
// untyped numbers.
func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	}
	return 0, false
}

// ValidateProfileUpdates checks a profile-update body against the whitelist
// and the value constraints. It returns an empty string when the update is
// acceptable, otherwise the error message for the 400 response.
func ValidateProfileUpdates(updates map[string]interface{}, allowed []string) string {
	for field := range updates {
		if !fieldAllowed(field, allowed) {
			return "Invalid updates"
		}
	}

	if v, ok := updates["name"]; ok {
		name, _ := v.(string)
		if name == "" {
			return "Name is required"
		}
	}

	if v, ok := updates["age"]; ok {
		age, numeric := asInt(v)
		if !numeric || age < 18 || age > 120 {
			return "Age must be between 18 and 120"
		}
	}

	if v, ok := updates["gender"]; ok {
		gender, _ := v.(string)
		if !oneOf(gender, "male", "female", "other") {
			return "Invalid gender value"
		}
	}

	if v, ok := updates["relationshipGoals"]; ok {
		goals, _ := v.(string)
		if !oneOf(goals, "casual", "serious", "marriage", "friendship") {
			return "Invalid relationship goals value"
		}
	}

	if v, ok := updates["partnerPreferences"]; ok {
		prefs, isMap := v.(map[string]interface{})
		if !isMap {
			return "Invalid partner preferences"
		}
		if msg := validatePartnerPreferences(prefs); msg != "" {
			return msg
		}
	}

	return ""
}

func validatePartnerPreferences(prefs map[string]interface{}) string {
	if v, ok := prefs["ageRange"]; ok {
		ageRange, isMap := v.(map[string]interface{})
		if !isMap {
			return "Invalid age range in partner preferences"
		}
		min, minOK := asInt(ageRange["min"])
		max, maxOK := asInt(ageRange["max"])
		if !minOK || !maxOK || min < 18 || max > 120 || min > max {
			return "Invalid age range in partner preferences"
		}
	}

	if v, ok := prefs["gender"]; ok {
		gender, _ := v.(string)
		if !oneOf(gender, "male", "female", "other", "any") {
			return "Invalid gender in partner preferences"
		}
	}

	if v, ok := prefs["maxDistance"]; ok {
		distance, numeric := asInt(v)
		if !numeric || distance < 0 || distance > 20000 {
			return "Max distance must be between 0 and 20000 km"
		}
	}

	return ""
}
