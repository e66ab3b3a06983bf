/*
Package domain contains the core domain models for the Parley controller.

It defines the fundamental entities of the conversation flow, such as the
ScenarioConfig graph, Node definitions, the two tool variants, and the
ContextUpdate event emitted on every transition. This package is kept pure
and free of external dependencies like I/O or persistence, following
Hexagonal Architecture principles.

# Key Entities

  - ScenarioConfig: The full declarative conversation graph (initial node + node map).
  - NodeConfig: One state of the conversation, bundling system messages and tools.
  - PlainTool / TransitionTool: The two tool variants a node may declare.
  - RuntimeTool: The wrapped, outward-facing tool shape handed to the executor.
  - ContextUpdate: The event instructing the pipeline to append messages and register tools.
*/
package domain
