package security

import "golang.org/x/crypto/bcrypt"

// bcrypt's default cost is fine for an interactive sign-in path; raise it
// only together with a rehash-on-login migration.
const passwordCost = bcrypt.DefaultCost

func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), passwordCost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckPassword reports a non-nil error when the candidate does not match
// the stored hash.
func CheckPassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
