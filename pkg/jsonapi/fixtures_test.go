package jsonapi

type person struct {
	ID        string
	Name      string
	Email     string
	Addresses []address
	Manager   *person
}

type employee struct {
	person
	Title string
}

type contractor struct {
	*employee
	Agency string
}

type address struct {
	ID     string
	Street string
}

type widget struct{}

type gadget struct{}

var personSerializer = Typed(func(p person) Object {
	related := map[string]Related{"addresses": {Data: p.Addresses}}
	if p.Manager != nil {
		related["manager"] = Related{Data: p.Manager}
	} else {
		related["manager"] = Related{}
	}
	return Object{
		Type:          "people",
		ID:            p.ID,
		Attributes:    map[string]any{"name": p.Name, "email": p.Email},
		Relationships: related,
	}
})

var employeeSerializer = SerializerFunc(func(object any) (Object, error) {
	var e employee
	switch v := object.(type) {
	case employee:
		e = v
	case *employee:
		e = *v
	case contractor:
		e = *v.employee
	}
	obj, err := personSerializer.Serialize(e.person)
	obj.Attributes["title"] = e.Title
	return obj, err
})

var addressSerializer = Typed(func(a address) Object {
	return Object{Type: "addresses", ID: a.ID, Attributes: map[string]any{"street": a.Street}}
})

func testCatalog() *Catalog {
	return NewCatalog().
		Register("personSerializer", personSerializer).
		Register("addressSerializer", addressSerializer)
}
