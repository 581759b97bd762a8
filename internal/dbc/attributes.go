package dbc

// AttributeRole is the model field a DBC attribute feeds.
type AttributeRole int

const (
	RoleNetwork AttributeRole = iota
	RoleInitial
	RoleSPN
)

// Attribute scopes, as written after the attribute name in BA_.
const (
	ScopeDatabase = ""
	ScopeSignal   = "SG_"
)

// KnownAttribute describes how to recognise an attribute with a meaning for
// the model.
type KnownAttribute struct {
	Role  AttributeRole
	Scope string   // ScopeDatabase or ScopeSignal
	Names []string // attribute names, first match wins
	// Defaulted attributes fall back to their BA_DEF_DEF_ value.
	Defaulted bool
}

// KnownAttributes is the built-in attribute table.
var KnownAttributes = []KnownAttribute{
	{Role: RoleNetwork, Scope: ScopeDatabase, Names: []string{"DBName", "BusName"}, Defaulted: true},
	{Role: RoleInitial, Scope: ScopeSignal, Names: []string{"GenSigStartValue"}, Defaulted: true},
	{Role: RoleSPN, Scope: ScopeSignal, Names: []string{"SPN"}},
}

// attrs holds attribute values by name, unquoted.
type attrs map[string]string

// lookup returns the value of the first attribute of role. Values are taken
// from the scope the attribute is declared for (the database, or the signal
// ref), then from the defaults.
func (p *parser) lookup(role AttributeRole, ref sigRef) (string, bool) {
	for _, ka := range KnownAttributes {
		if ka.Role != role {
			continue
		}
		var a attrs
		switch ka.Scope {
		case ScopeDatabase:
			a = p.global
		case ScopeSignal:
			a = p.sigAttrs[ref]
		}
		for _, name := range ka.Names {
			if v, ok := a[name]; ok {
				return v, true
			}
		}
		if !ka.Defaulted {
			continue
		}
		for _, name := range ka.Names {
			if v, ok := p.defaults[name]; ok {
				return v, true
			}
		}
	}
	return "", false
}
