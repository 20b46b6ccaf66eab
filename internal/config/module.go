package config

import "go.uber.org/fx"

// Module exposes the configuration of the named service for fx graphs.
func Module(service string, requirements ...Requirement) fx.Option {
	return fx.Provide(func() (*Config, error) {
		return Load(service, requirements...)
	})
}
