/*
Package dsl provides a fluent Go builder for step registries.

It is the programmatic counterpart of the YAML definitions read by package
loader, useful for flows compiled into the binary and for tests.

Example usage:

	b := dsl.New("reason")

	b.Question("reason").
		Prompt("How did we fall short?").
		Options("Too expensive", "Other").
		Go("comment")

	b.Comment("comment").
		Prompt("Anything else?").
		Go("canceled")

	b.Final("canceled").
		Text("Your subscription has been canceled.")

	reg, err := b.Build()
*/
package dsl
