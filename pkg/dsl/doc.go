/*
Package dsl builds switchyard machine documents in Go instead of YAML.

The builder produces the same definition.Document the catalogs load, so a
machine built here can be compiled, served from a memory catalog, or marshaled
back to YAML.

Example usage:

	b := dsl.New("door").Describe("A door with a lock.")

	b.State("closed", 0)
	b.State("open", 1)
	b.Virtual("knocked")

	b.From("closed").To("knocked")
	b.From("knocked").Resolve("knock")
	b.From("open").To("closed")

	b.Resolver("knock", "key").
		When("key").To("open").Note("unlocked").
		Otherwise().End()

	doc, err := b.Build()
*/
package dsl
