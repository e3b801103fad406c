// Package textutil provides project-name sanitization.
//
// Project names double as directory names under the results root and as
// string literals inside generated driver programs, so they are restricted to
// ASCII letters, digits, and underscores.
package textutil
