/*
Package runner provides the Host, an in-process reference implementation of
the two collaborators a scenario needs: the pipeline injector that receives
context updates, and the tool executor that runs handlers and honors the
transition-callback contract.

The Host is what CLI simulators, the HTTP adapter, and the MCP adapter use to
drive a scenario without a real LLM pipeline behind it.
*/
package runner
