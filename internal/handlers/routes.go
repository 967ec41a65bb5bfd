package handlers

import (
	"lambda-jsonapi/pkg/app"
	"lambda-jsonapi/pkg/controller"
)

// Routes is the route table of the customers API.
var Routes = []app.Route{
	{Method: "GET", Resource: "/customers", Controller: "customers", Action: "index"},
	{Method: "POST", Resource: "/customers", Controller: "customers", Action: "create"},
	{Method: "GET", Resource: "/customers/{id}", Controller: "customers", Action: "show"},
	{Method: "PATCH", Resource: "/customers/{id}", Controller: "customers", Action: "update"},
	{Method: "PUT", Resource: "/customers/{id}", Controller: "customers", Action: "update"},
	{Method: "DELETE", Resource: "/customers/{id}", Controller: "customers", Action: "destroy"},
	{Method: "GET", Resource: "/clients/{id}", Controller: "customers", Action: "legacy"},
}

// SetupRoutes registers controllers and the route table on application and
// checks that every route resolves.
func SetupRoutes(application *app.Application, controllers ...controller.Dispatcher) error {
	if err := application.Register(controllers...); err != nil {
		return err
	}
	for _, route := range Routes {
		if err := application.Route(route.Method, route.Resource, route.Controller, route.Action); err != nil {
			return err
		}
	}
	return application.Validate()
}
