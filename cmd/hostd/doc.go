/*
Command hostd runs the interpreter host daemon: a single process hosting
multiple isolated script execution contexts behind an HTTP API.

Usage:

	hostd [-port 8090]

Configuration comes from the environment (see internal/config); the
-port flag overrides PORT for convenience.
*/
package main
