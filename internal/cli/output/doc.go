// Package output renders command results as a table, JSON or YAML.
//
// Structs render as FIELD/VALUE tables, slices of structs as one row per
// element, and maps as KEY/VALUE tables sorted by key. Field names come from
// the json tag so that every format uses the same vocabulary.
package output
