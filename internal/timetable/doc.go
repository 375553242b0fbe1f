// Package timetable derives teacher, class, room and vacant-room views from
// an imported session snapshot.
//
// Every function here is total: blank or unknown inputs yield empty views,
// never errors. Rename tables are applied at the boundary of each derived
// slot so queries may use either original or display names.
package timetable
