package models

import "strings"

// Validate checks if the group meets all validation requirements
func (g *Group) Validate() error {
	g.Title = strings.TrimSpace(g.Title)
	g.Slug = strings.TrimSpace(g.Slug)
	return validate.Struct(g)
}

func (g *Group) String() string {
	return g.Title
}
