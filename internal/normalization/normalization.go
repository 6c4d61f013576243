package normalization

import "strings"

// ParseInputString collapses runs of whitespace to single spaces and trims
// the ends, so user-entered names compare and store consistently.
func ParseInputString(s string) string {
  return strings.Join(strings.Fields(s), " ")
}

// ParseInputStringPtr normalizes through ParseInputString, returning nil when
// the pointer is nil or the normalized value is empty.
func ParseInputStringPtr(s *string) *string {
  if s == nil {
    return nil
  }
  out := ParseInputString(*s)
  if out == "" {
    return nil
  }
  return &out
}

// ParseEmail lowercases and trims an email address.
func ParseEmail(s string) string {
  return strings.ToLower(strings.TrimSpace(s))
}

// ParsePhone strips dashes and spaces from a phone number.
func ParsePhone(s string) string {
  s = strings.ReplaceAll(s, "-", "")
  s = strings.ReplaceAll(s, " ", "")
  return s
}
