/*
Package dsl provides a fluent Go builder for scenario configurations.

It allows developers to define conversation graphs using a type-safe builder
instead of external YAML files. This is particularly useful for dynamic graph
generation, unit testing, and leveraging IDE autocompletion.

Example usage:

	b := dsl.New("greeting")

	b.Node("greeting").
		Role("You are a friendly barista.").
		Task("Greet the customer and take their order.").
		Handle("lookup_menu", "Return today's menu.", nil, menuHandler).
		Go("order_done", "Call when the order is complete.", "farewell")

	b.Node("farewell").
		Task("Thank the customer and say goodbye.")

	cfg, err := b.Build()
	// cfg is ready for parley.New(...)
*/
package dsl
