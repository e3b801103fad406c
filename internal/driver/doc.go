// Package driver turns a lip-sync choice and a resolution into the short
// python program stage 2 executes inside the AutoMV checkout.
//
// The composition is a typed plan (Plan) rendered by Build, so the only
// variable parts of the program are the quoted project name and the
// resolution literal.
package driver
