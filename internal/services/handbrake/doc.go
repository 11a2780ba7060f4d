// Package handbrake wraps the HandBrakeCLI transcoder subprocess.
package handbrake
