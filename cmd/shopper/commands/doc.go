// Package commands implements the shopper CLI.
//
// The CLI is the presentation layer over the browse service: each command
// triggers service operations, waits for them to settle and renders the
// resulting product list, history, badge and screen events.
package commands
