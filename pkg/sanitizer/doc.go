// Package sanitizer provides input normalization for customer and traveler
// data before validation and storage.
//
// All normalization functions are idempotent - applying them multiple times
// produces the same result. Functions handle invalid input gracefully,
// typically by returning empty strings rather than errors.
//
// Normalization includes:
//   - Names: Collapse whitespace, trim leading/trailing spaces
//   - Emails: Trim and lowercase
//   - Phone numbers: Convert to E.164 format (+[country][number])
package sanitizer
