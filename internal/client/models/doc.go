// Package models defines the client-side vault entry and the patch type used
// to update it.
package models
