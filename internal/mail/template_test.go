package mail

import "testing"

func TestRender(t *testing.T) {
	p := Placeholders{
		Email:      "visitor@example.org",
		Name:       "Jane Roe",
		IP:         "203.0.113.7",
		Subject:    "About a photograph",
		Message:    "Where was this taken?",
		Newsletter: "yes",
		MainTitle:  "Archive",
		MainURL:    "https://archive.example.org",
		SiteTitle:  "Postcards",
		SiteURL:    "https://archive.example.org/s/postcards",
		UserName:   "curator",
		Object:     "Photograph #12",
	}

	tests := []struct {
		name string
		tmpl string
		want string
	}{
		{
			"full template",
			"From {name} <{email}> (ip {ip}) about {object}:\n{message}",
			"From Jane Roe <visitor@example.org> (ip 203.0.113.7) about Photograph #12:\nWhere was this taken?",
		},
		{
			"site context",
			"[{site_title}] {subject} (newsletter: {newsletter})",
			"[Postcards] About a photograph (newsletter: yes)",
		},
		{
			"unknown braces kept",
			"Hello {name}, visit {unknown_key}",
			"Hello Jane Roe, visit {unknown_key}",
		},
		{
			"no placeholders",
			"plain text",
			"plain text",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.tmpl, p); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRender_RepeatedPlaceholder(t *testing.T) {
	got := Render("{email} {email}", Placeholders{Email: "a@b.c"})
	if got != "a@b.c a@b.c" {
		t.Errorf("Render() = %q", got)
	}
}
