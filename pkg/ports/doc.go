/*
Package ports defines the driven ports (interfaces) for the Parley controller.

These interfaces decouple the core state machine from external collaborators,
allowing the controller to work with any message pipeline, storage backend,
or locking strategy.

# Key Interfaces

  - Injector: Delivers ContextUpdate events into the running message pipeline.
  - NodeSetter: The one capability the transition wrapper binds callbacks to.
  - StateStore: Persists and loads session position for "Stop & Resume" workflows.
  - DistributedLocker: Coordinates session access across multiple replicas.
*/
package ports
