package scaffold

import "strings"

// Author is the package author as entered in one prompt line.
type Author struct {
	Name  string
	Email string
	URL   string
}

// ParseAuthor reads "Name | email | url". Missing trailing parts stay
// empty.
func ParseAuthor(s string) Author {
	parts := strings.SplitN(s, "|", 3)
	for len(parts) < 3 {
		parts = append(parts, "")
	}
	return Author{
		Name:  strings.TrimSpace(parts[0]),
		Email: strings.TrimSpace(parts[1]),
		URL:   strings.TrimSpace(parts[2]),
	}
}

// IsZero reports whether no author part is set.
func (a Author) IsZero() bool {
	return a == Author{}
}

// Line formats the author the way ParseAuthor reads it.
func (a Author) Line() string {
	if a.IsZero() {
		return ""
	}
	return strings.Join([]string{a.Name, a.Email, a.URL}, " | ")
}

// String formats the author in npm's "Name <email> (url)" form.
func (a Author) String() string {
	var b strings.Builder
	b.WriteString(a.Name)
	if a.Email != "" {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString("<" + a.Email + ">")
	}
	if a.URL != "" {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString("(" + a.URL + ")")
	}
	return b.String()
}
