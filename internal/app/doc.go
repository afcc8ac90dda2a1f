// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the generation lifecycle: load experiment
// definitions, compile them, render every experiment list and write it out.
// It is decoupled from any specific entrypoint like a CLI.
package app
