package config

import "github.com/spf13/viper"

// SetDefaults registers default values for all technical parameters.
// Scenarios have no defaults and must come from a config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("parameters.max-slope.pv", 10.0)
	v.SetDefault("parameters.max-slope.wind", 20.0)
	v.SetDefault("parameters.max-building-share", 0.01)
	v.SetDefault("parameters.max-urban-green-share", 0.01)
	v.SetDefault("parameters.max-depth-offshore", -50.0)
	v.SetDefault("parameters.maximum-installable-power-density.pv-on-tilted-roofs", 160.0)
	v.SetDefault("parameters.maximum-installable-power-density.pv-on-flat-areas", 80.0)
	v.SetDefault("parameters.maximum-installable-power-density.onshore-wind", 8.0)
	v.SetDefault("parameters.maximum-installable-power-density.offshore-wind", 15.0)
	v.SetDefault("parameters.flat-roof-share", 0.5)
	v.SetDefault("parameters.rooftop-correction-factor", 1.0)
	v.SetDefault("parameters.continental-unit-code", "EUR")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("workers", 0)
}
