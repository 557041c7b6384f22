// Package config loads and validates SafeVault configuration.
//
// Configuration comes from three layers, each overriding the last:
//
//  1. Hardcoded defaults
//  2. A YAML file (configs/config.yaml by default)
//  3. SAFEVAULT_* environment variables
//
// Validation is strict about the session signing secret: the process
// refuses to start without a secret of adequate length, because forged
// session tokens would bypass every role check in the system.
package config
