// Package errors defines the classified error type shared by docpress
// subsystems.
//
// A ClassifiedError carries a category, a severity and a retry strategy so
// that retry loops, the CLI exit path and log routing can act on errors
// without matching message text. Errors are built fluently:
//
//	return errors.StoreError("list documents failed").
//		WithCause(err).
//		WithContext("cursor", cursor).
//		Build()
//
// Callers inspect errors through HasCategory and AsClassified, both of which
// see through fmt.Errorf %w wrapping. CLIErrorAdapter maps classified errors
// onto stderr output and process exit codes at the end of a command run.
package errors
