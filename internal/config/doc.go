// Package config manages user-level settings stored at ~/.scaffold/config.yaml.
// Values can be overridden with SCAFFOLD_* environment variables, and a .env
// file in the working directory is loaded first so API keys can live next to
// the project being generated.
package config
