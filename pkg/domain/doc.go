/*
Package domain contains the core model of the Switchyard engine.
It defines the fundamental entities of a dynamic state machine: States and the
Registry that declares them, Resolvers and the Targets they return, the
Transition Table binding the two, and the Hooks fired around every transition.
This package is kept pure and free of I/O, following Hexagonal Architecture
principles. Execution lives in the runtime; graph extraction in pkg/graph.

# Key Entities

  - State: An immutable node of the control graph, identified by name and value.
  - Registry: The frozen, ordered set of declared States.
  - Resolver: A delegate computing the next Target from call-time Args.
  - Target: The tagged result of a Resolver (State, ChainTo, or End).
  - Table: The frozen mapping from source State to Resolver.
  - Hooks: Named side effects (before_<s>, after_<s>, on_<s>, on_start, on_end).
  - Definition: The immutable bundle a machine is constructed from.
*/
package domain
