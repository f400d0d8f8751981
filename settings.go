package layenv

// FieldSetting represents metadata about a configuration leaf
type FieldSetting struct {
	Path       string // Dot-separated schema path (e.g., "server.port")
	Key        string // Flat key the value is read from (e.g., "GG_SERVER_PORT")
	FieldName  string // Struct field name
	Type       string // Go type name
	Default    string // Default value from tag, masked for secrets
	HasDefault bool   // Whether a default tag is present
	Required   bool   // No default and not optional
	Secret     bool   // Whether field is marked as secret
	Rules      string // validate tag
}

// Settings returns metadata about every leaf, in schema order.
func (p *Parser[T]) Settings() []FieldSetting {
	settings := make([]FieldSetting, 0, len(p.schema.leaves))
	for _, l := range p.schema.leaves {
		f := l.field
		key, _ := p.index.Key(l.path)
		settings = append(settings, FieldSetting{
			Path:       l.path.String(),
			Key:        key,
			FieldName:  f.GoName,
			Type:       f.Type.String(),
			Default:    f.display(f.Default),
			HasDefault: f.HasDefault,
			Required:   !f.HasDefault && !f.Optional,
			Secret:     f.Secret,
			Rules:      f.Rules,
		})
	}
	return settings
}

// FilterSettings returns settings matching the given predicate function
func FilterSettings(settings []FieldSetting, predicate func(FieldSetting) bool) []FieldSetting {
	var filtered []FieldSetting
	for _, setting := range settings {
		if predicate(setting) {
			filtered = append(filtered, setting)
		}
	}
	return filtered
}

// SecretFields returns all fields marked as secrets
func (p *Parser[T]) SecretFields() []FieldSetting {
	return FilterSettings(p.Settings(), func(s FieldSetting) bool {
		return s.Secret
	})
}

// RequiredFields returns all fields that must be set by some source
func (p *Parser[T]) RequiredFields() []FieldSetting {
	return FilterSettings(p.Settings(), func(s FieldSetting) bool {
		return s.Required
	})
}
