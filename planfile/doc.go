// Package planfile writes computed plans into versioned migration
// directories.
//
// It speaks the atlas migrate.Dir and migrate.Formatter interfaces, so the
// output is consumable by the usual migration tooling (golang-migrate,
// goose, dbmate, ...) once a dialect renderer is plugged in. Without one,
// files carry the symbolic operation list.
package planfile
