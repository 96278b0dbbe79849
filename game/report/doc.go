// Package report builds the localized match summary stored next to every
// minimap.
//
// A Builder is bound to one locale at construction. Build reads a
// replay.Summary and resolves every lobby setting through the locale tables.
// A missing entry is an error (*locale.LookupError), except for map names,
// which fall back to the name recorded in the game.
//
// Field names of the JSON form follow the report format consumed by the
// match archive: nombre_archivo, duracion_partida, punto_de_vista, equipos
// and so on. Note that a player's victoria is 0 for winners and 1 for
// everyone else.
package report
