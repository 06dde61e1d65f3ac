package billing

const shareCodeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const shareCodeLength = 8

// NewShareCode returns an 8 character uppercase alphanumeric code. Codes are
// generated once per student and never rotated.
func NewShareCode() (string, error) {
	return randomChars(shareCodeChars, shareCodeLength)
}
