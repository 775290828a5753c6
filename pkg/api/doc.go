// Package api defines the request and response messages of the splitr RPC
// services. Messages travel as JSON; field names are lowerCamelCase and
// money values are decimal numbers with two fractional digits.
package api
