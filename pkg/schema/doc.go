/*
Package schema validates scenario configurations before anything runs.

It performs two jobs:

  - Validate checks a typed domain.ScenarioConfig against the structural
    rules of the conversation graph (shape conformance, initial-node
    membership, transition-target reachability) and reports every violation
    found, not just the first.

  - Decode converts untyped configuration data (e.g. parsed YAML) into a
    typed config under a closed-world policy: unknown fields at any level are
    rejected rather than silently ignored, so a misspelled transition field
    fails validation instead of silently producing a non-transitioning tool.

Both operations are deterministic and side-effect free. A configuration is
validated once, at scenario construction; the validator never runs on the
transition path.
*/
package schema
