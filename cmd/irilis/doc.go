// Command irilis is the operator CLI for inspecting the job queue and
// managing configuration.
package main
