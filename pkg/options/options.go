// Package options resolves the connection parameters of a foreign table.
//
// Parameters are layered: compiled defaults, then server-scope options, then
// table-scope options. Each layer only overrides the keys it sets.
package options

import (
	"fmt"
	"strings"
)

// Option keys recognized at both server and table scope.
const (
	KeyAPIURL       = "api_url"
	KeyAPIKey       = "api_key"
	KeyConnectionID = "connection_id"
	KeyObject       = "object"
)

const (
	DefaultAPIURL       = "https://fdw.huruli.dev"
	DefaultConnectionID = "cid1"
)

// Options is one scope of string key-value options.
type Options map[string]string

// Get returns the value for key and whether it was set.
func (o Options) Get(key string) (string, bool) {
	if o == nil {
		return "", false
	}
	v, ok := o[key]
	return v, ok
}

// ConnectionParams are the effective parameters used to reach the remote table.
type ConnectionParams struct {
	BaseURL      string `json:"api_url" yaml:"api_url"`
	APIKey       string `json:"api_key" yaml:"api_key"`
	ConnectionID string `json:"connection_id" yaml:"connection_id"`
	Object       string `json:"object" yaml:"object"`
}

// Defaults returns the compiled-in parameters.
func Defaults() ConnectionParams {
	return ConnectionParams{
		BaseURL:      DefaultAPIURL,
		APIKey:       "",
		ConnectionID: DefaultConnectionID,
		Object:       "",
	}
}

// Resolve overlays opts onto previous. Keys absent from opts keep their
// previous value. Nothing is validated here.
func Resolve(opts Options, previous ConnectionParams) ConnectionParams {
	return ConnectionParams{
		BaseURL:      pick(opts, KeyAPIURL, previous.BaseURL),
		APIKey:       pick(opts, KeyAPIKey, previous.APIKey),
		ConnectionID: pick(opts, KeyConnectionID, previous.ConnectionID),
		Object:       pick(opts, KeyObject, previous.Object),
	}
}

// ResolveScopes resolves server then table scope over the compiled defaults.
func ResolveScopes(server, table Options) ConnectionParams {
	return Resolve(table, Resolve(server, Defaults()))
}

func pick(opts Options, key, fallback string) string {
	if v, ok := opts.Get(key); ok {
		return v
	}
	return fallback
}

// Redacted returns a copy safe to print, with the api key masked.
func (p ConnectionParams) Redacted() ConnectionParams {
	if p.APIKey == "" {
		return p
	}
	keep := 4
	if len(p.APIKey) <= keep*2 {
		p.APIKey = strings.Repeat("*", len(p.APIKey))
		return p
	}
	p.APIKey = p.APIKey[:keep] + strings.Repeat("*", len(p.APIKey)-keep)
	return p
}

// ParseAssignments turns "key=value" strings into Options.
func ParseAssignments(pairs []string) (Options, error) {
	opts := Options{}
	for _, pair := range pairs {
		key, val, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid option '%s', expected key=value", pair)
		}
		opts[key] = val
	}
	return opts, nil
}

// Merge returns a new Options with the keys of each layer applied in order.
func Merge(layers ...Options) Options {
	out := Options{}
	for _, layer := range layers {
		for k, v := range layer {
			out[k] = v
		}
	}
	return out
}
