// Package config provides the configuration of a pixel audit run: input
// selection, dispatcher limits, probe settings, and report preferences.
//
// Values are layered. NewConfig supplies defaults, a YAML config file
// overrides them, PIXELAUDIT_* environment variables (optionally read from
// a .env file) override the file, and CLI flags override everything.
package config
