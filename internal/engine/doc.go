/*
Package engine wraps the goja JavaScript engine behind the fixed contract
the interpreter host depends on: create and tear down an isolated VM, bind
names into its global namespace, run source text as a top-level program,
and expose the VM's thread records for the running-state check.

The host never touches goja types directly; everything crosses this
boundary as plain Go values and errors.
*/
package engine
