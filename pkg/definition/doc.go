/*
Package definition compiles declarative machine documents into a domain.Definition.

A document lists states, transitions and rule-based resolvers:

	name: traffic
	initial: red
	states:
	  - {name: red, value: 1}
	  - {name: check}          # no value: virtual
	  - {name: green, value: 2}
	transitions:
	  - {from: red, to: check}
	  - {from: check, resolver: light}
	resolvers:
	  - id: light
	    params: [go]
	    branches:
	      - {when: go, to: green, note: cleared}
	      - {to: red}

Branch conditions are evaluated in order against the resolver's arguments; the
first match wins. Conditions take the forms "name", "!name", "name == literal"
and "name != literal", with literals parsed as YAML scalars.

Resolvers may also be implemented in Go with WithResolver, in which case the
document's branches only describe them for graph extraction.
*/
package definition
