// Package queries holds the Sparkify schema and the SELECT bodies that fill the star schema.
package queries

import (
	_ "embed"
)

// CreateTables drops and creates the staging and star schema tables.
//
//go:embed create_tables.sql
var CreateTables string

// SongplayTableInsert joins staged events to staged songs on title, artist and duration.
const SongplayTableInsert = `
	SELECT
		md5(events.sessionid || events.start_time) songplay_id,
		events.start_time,
		events.userid,
		events.level,
		songs.song_id,
		songs.artist_id,
		events.sessionid,
		events.location,
		events.useragent
	FROM (SELECT TIMESTAMP 'epoch' + ts/1000 * interval '1 second' AS start_time, *
		FROM staging_events
		WHERE page='NextSong') events
	LEFT JOIN staging_songs songs
		ON events.song = songs.title
		AND events.artist = songs.artist_name
		AND events.length = songs.duration`

const UserTableInsert = `
	SELECT distinct userid, firstname, lastname, gender, level
	FROM staging_events
	WHERE page='NextSong'`

const SongTableInsert = `
	SELECT distinct song_id, title, artist_id, year, duration
	FROM staging_songs`

const ArtistTableInsert = `
	SELECT distinct artist_id, artist_name, artist_location, artist_latitude, artist_longitude
	FROM staging_songs`

const TimeTableInsert = `
	SELECT start_time, extract(hour from start_time), extract(day from start_time), extract(week from start_time),
		extract(month from start_time), extract(year from start_time), extract(dayofweek from start_time)
	FROM songplays`

// QualityCheck is a scalar query and the value its first column must hold.
type QualityCheck struct {
	SQL      string      `json:"sql_testcase" yaml:"sql_testcase"`
	Expected interface{} `json:"expected_result" yaml:"expected_result"`
}

// DefaultQualityChecks count rows whose descriptive columns are all null.
var DefaultQualityChecks = []QualityCheck{
	{SQL: "SELECT COUNT(*) FROM public.users WHERE COALESCE(first_name, last_name, gender, level) IS NULL;", Expected: 0},
	{SQL: "SELECT COUNT(*) FROM public.songs WHERE COALESCE(title, artistid, year::text, duration::text) IS NULL;", Expected: 0},
	{SQL: "SELECT COUNT(*) FROM public.artists WHERE COALESCE(name, location, lattitude::text, longitude::text) IS NULL;", Expected: 0},
	{SQL: "SELECT COUNT(*) FROM public.time WHERE COALESCE(hour::text, day::text, week::text, month::text, year::text, weekday::text) is NULL;", Expected: 0},
}
