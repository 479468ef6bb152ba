/*
Package domain contains the types shared by the tandem engine and its hosts.

It is kept free of I/O and holds only what crosses package boundaries: the
typed Error with its sentinel kinds, the events queued by the engine, and the
lifecycle hooks used for observability.

# Key Entities

  - Error: a failure tied to a document uri, classified by kind (ErrIO,
    ErrParse, ErrResolution, ErrSemantic, ErrExpression).
  - EngineEvent: an outcome handed out by DrainEvents, such as Evaluated.
  - LifecycleHooks: callbacks fired on every load and evaluation.
*/
package domain
