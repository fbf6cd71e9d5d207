package api

import (
	"crypto/rand"
	"math/big"
	"regexp"
)

const (
	idLength = 24
	charset  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	taskIDPrefix = "task_"
)

var taskIDPattern = regexp.MustCompile(`^task_[a-zA-Z0-9]{24}$`)

// NewTaskID generates a new correlation identifier with the "task_" prefix
// followed by 24 cryptographically random alphanumeric characters. It is
// used when a caller submits a request without a correlation ID.
func NewTaskID() string {
	return taskIDPrefix + randomAlphanumeric(idLength)
}

// IsGeneratedTaskID checks whether the given string is an ID produced by
// NewTaskID (matches "task_" + 24 alphanumeric characters). Caller-supplied
// correlation IDs are opaque and never validated against this pattern.
func IsGeneratedTaskID(id string) bool {
	return taskIDPattern.MatchString(id)
}

func randomAlphanumeric(n int) string {
	max := big.NewInt(int64(len(charset)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("crypto/rand failed: " + err.Error())
		}
		b[i] = charset[idx.Int64()]
	}
	return string(b)
}
