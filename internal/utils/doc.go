// Package utils provides shared infrastructure for the CLI: the Viper-backed
// configuration loader and the zap logger factory.
package utils
