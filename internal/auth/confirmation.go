package auth

import "github.com/google/uuid"

// DeriveConfirmationCode maps an email address to its confirmation code:
// a name-based (MD5, version 3) UUID in the X.500 namespace. The same email
// always yields the same code, so a repeated sign-up resends an identical code.
// The code proves control of the mailbox; it is not a secret against anyone
// who knows the derivation.
func DeriveConfirmationCode(email string) string {
	return uuid.NewMD5(uuid.NameSpaceX500, []byte(email)).String()
}
