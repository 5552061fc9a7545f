package repository

import (
	"crypto/rand"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// idRetryCount bounds how many times GenerateID will try before giving up.
const idRetryCount = 20

// Id lengths per table. Users and projects keep short ids because they appear
// in URLs; everything else gets 10 characters.
const (
	UserIDLength      = 8
	ProjectIDLength   = 8
	MemberIDLength    = 10
	TaskGroupIDLength = 10
	TaskIDLength      = 10
	SubTaskIDLength   = 10
	AuditIDLength     = 10
)

// ErrRandomID means the generator kept colliding with existing rows.
var ErrRandomID = errors.New("could not generate a unique id")

// GenerateID produces a random base62 id of the given length that does not
// yet exist in table. Must run inside the transaction that will insert the
// row, so the collision check stays valid.
func GenerateID(tx *gorm.DB, table string, length int) (string, error) {
	for attempt := 0; attempt < idRetryCount; attempt++ {
		id, err := randomBase62(length)
		if err != nil {
			return "", fmt.Errorf("failed to generate id: %w", err)
		}

		var count int64
		if err := tx.Table(table).Where("id = ?", id).Count(&count).Error; err != nil {
			return "", fmt.Errorf("failed to check id uniqueness: %w", err)
		}
		if count == 0 {
			return id, nil
		}
	}
	return "", ErrRandomID
}

func randomBase62(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	for i, b := range bytes {
		bytes[i] = idAlphabet[int(b)%len(idAlphabet)]
	}
	return string(bytes), nil
}
