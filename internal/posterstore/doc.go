// Package posterstore persists resolved poster URLs in SQLite so a restarted
// process does not have to ask TMDB again.
//
// Only real poster URLs belong here. Placeholders reflect a failure at a point
// in time and are kept in memory only.
package posterstore
