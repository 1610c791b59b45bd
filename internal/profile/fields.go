package profile

// Field policy for the profile-update path. protectedFields always reject the
// whole request; anything not in allowedFields is silently dropped so older
// clients sending extra keys keep working.

var protectedFields = map[string]struct{}{
	"id":            {},
	"email":         {},
	"createdAt":     {},
	"emailVerified": {},
}

var allowedFields = map[string]struct{}{
	"name":                  {},
	"image":                 {},
	"role":                  {},
	"registrationNumber":    {},
	"university":            {},
	"enrollmentYear":        {},
	"aadhaarNumber":         {},
	"graduationYear":        {},
	"currentCompany":        {},
	"currentPosition":       {},
	"institutionId":         {},
	"institutionName":       {},
	"accreditationStatus":   {},
	"departmentId":          {},
	"departmentName":        {},
	"accessLevel":           {},
	"bio":                   {},
	"phone":                 {},
	"location":              {},
	"linkedinUrl":           {},
	"githubUrl":             {},
	"portfolioUrl":          {},
	"careerGoals":           {},
	"skills":                {},
	"interests":             {},
	"achievements":          {},
	"projects":              {},
	"mentorshipPreferences": {},
}

// Collections persisted as JSONB; a non-null value must decode to an object
// or array.
var jsonFields = []string{
	"skills",
	"interests",
	"achievements",
	"projects",
	"mentorshipPreferences",
}
