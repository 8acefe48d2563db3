package schema

// Planet is the declared shape of a planet create/update body: name and
// diameter are required, description is optional, nothing else is accepted.
func Planet() *Object {
	return NewObject(
		Field{Name: "name", Type: TypeString, Required: true},
		Field{Name: "description", Type: TypeString},
		Field{Name: "diameter", Type: TypeInteger, Required: true},
	)
}
