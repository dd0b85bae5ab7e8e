package domain

import "strings"

// NormalizeEmail is applied by every store on write and on lookup, so email
// comparisons are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeUser trims name and normalizes email the way stores persist them.
// Either one blank after trimming yields ErrEmptyField.
func NormalizeUser(name, email string) (string, string, error) {
	name, email = strings.TrimSpace(name), NormalizeEmail(email)
	if name == "" || email == "" {
		return "", "", ErrEmptyField
	}
	return name, email, nil
}

// NormalizeReview trims author and text, rejecting blanks with ErrEmptyField.
func NormalizeReview(author, text string) (string, string, error) {
	author, text = strings.TrimSpace(author), strings.TrimSpace(text)
	if author == "" || text == "" {
		return "", "", ErrEmptyField
	}
	return author, text, nil
}
