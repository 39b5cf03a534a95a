package mail

import "strings"

// Placeholders are the values substituted into mail templates. Rendering
// is this module's job; the transport only ever sees finished text.
type Placeholders struct {
	Email      string
	Name       string
	IP         string
	Subject    string
	Message    string
	Newsletter string
	MainTitle  string
	MainURL    string
	SiteTitle  string
	SiteURL    string
	UserName   string
	Object     string
}

// Render substitutes every {placeholder} occurrence in tmpl. Unknown
// braces are left as-is.
func Render(tmpl string, p Placeholders) string {
	r := strings.NewReplacer(
		"{email}", p.Email,
		"{name}", p.Name,
		"{ip}", p.IP,
		"{subject}", p.Subject,
		"{message}", p.Message,
		"{newsletter}", p.Newsletter,
		"{main_title}", p.MainTitle,
		"{main_url}", p.MainURL,
		"{site_title}", p.SiteTitle,
		"{site_url}", p.SiteURL,
		"{user_name}", p.UserName,
		"{object}", p.Object,
	)
	return r.Replace(tmpl)
}
