/*
Package interp hosts multiple isolated script execution contexts inside
one process and implements the protocol between them.

# Overview

Each context owns its global namespace and thread records (engine
package). The host tracks every live context in an arena keyed by a
monotonically increasing ID that is never reused. One context at a time
holds the "active" designation; handing it over and back is the job of
the execution switch, a scoped guard whose restore runs on every exit
path.

A run request moves through a fixed sequence:

 1. Build a shared namespace from the caller's mapping. One
    non-shareable value aborts the whole call before any switch.
 2. Switch into the target context.
 3. Apply every shared item into the target's top-level namespace,
    overwriting same-named bindings.
 4. Execute the source text as a top-level program. Bindings persist
    afterward; that is an intentional, observable side effect.
 5. Capture any raised failure as a plain (kind, message) snapshot.
 6. Switch back, unconditionally.
 7. Release every handle, tolerating a vanished owner.
 8. Re-raise the captured failure, if any, in the caller's context.

# Isolation

Values cross the context boundary only as independently owned copies
over a closed set of kinds (share package). Failures cross only as text
snapshots. No live reference ever leaves the context it was born in.

# Concurrency

The model is cooperative and single-active: a run suspends its caller
for the full duration, and no two runs execute in true parallel inside
the host. There is no cancellation or timeout; a non-terminating run
blocks its caller indefinitely by design. Registry state is mutated only
by create and destroy under the host lock.
*/
package interp
