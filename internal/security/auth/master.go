package auth

import "crypto/subtle"

// MasterIdentity is the one operator identity configured on the process
// rather than stored in the master directory. It resolves to a well-known,
// always-available system database.
type MasterIdentity struct {
	Username string
	Password string
	Email    string
	DBName   string
}

// IsMasterCredentials compares submitted credentials against the configured
// operator identity in constant time.
func (m MasterIdentity) IsMasterCredentials(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(m.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(m.Password)) == 1
	return userOK && passOK
}

// IsMasterUsername reports whether username names the operator identity.
func (m MasterIdentity) IsMasterUsername(username string) bool {
	return subtle.ConstantTimeCompare([]byte(username), []byte(m.Username)) == 1
}

// Claims builds the canonical claim set for the operator identity.
func (m MasterIdentity) Claims() Claims {
	return BuildClaims(m.Username, "master", "master", "", "master", m.DBName, m.Email)
}
